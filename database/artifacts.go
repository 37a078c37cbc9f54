package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"quoteserver/actuarial"
	"quoteserver/compliance"
)

// Виды вычисленных артефактов проспекта
const (
	ArtifactSimulation = "simulation"
	ArtifactSplit      = "split"
	ArtifactSavings    = "savings"
	ArtifactCompliance = "compliance"
)

// ArtifactSet все вычисленные артефакты одного проспекта.
// Отсутствующий артефакт представлен nil - проверка полноты
// выполняется Gatekeeper-ом, не хранилищем.
type ArtifactSet struct {
	Simulation *actuarial.SimulationResult
	Split      *actuarial.UtilizerSplit
	Savings    *actuarial.SavingsScenario
	Compliance *compliance.Result
}

// SaveArtifact сохраняет артефакт движка, перезаписывая предыдущий.
// Повторный запуск движка перезаписывает артефакт целиком.
func (db *StagingDB) SaveArtifact(prospectID, kind string, payload interface{}, generatedAt time.Time) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s artifact: %w", kind, err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO prospect_artifacts (prospect_id, kind, payload_json, generated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(prospect_id, kind) DO UPDATE SET
			payload_json = excluded.payload_json,
			generated_at = excluded.generated_at`,
		prospectID, kind, string(payloadJSON), generatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save %s artifact: %w", kind, err)
	}

	return nil
}

// LoadArtifacts загружает все артефакты проспекта.
// Отсутствующие артефакты остаются nil.
func (db *StagingDB) LoadArtifacts(prospectID string) (*ArtifactSet, error) {
	rows, err := db.conn.Query(`
		SELECT kind, payload_json FROM prospect_artifacts WHERE prospect_id = ?`,
		prospectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer rows.Close()

	set := &ArtifactSet{}
	for rows.Next() {
		var kind, payloadJSON string
		if err := rows.Scan(&kind, &payloadJSON); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}

		switch kind {
		case ArtifactSimulation:
			var sim actuarial.SimulationResult
			if err := json.Unmarshal([]byte(payloadJSON), &sim); err != nil {
				return nil, fmt.Errorf("failed to unmarshal simulation artifact: %w", err)
			}
			set.Simulation = &sim
		case ArtifactSplit:
			var split actuarial.UtilizerSplit
			if err := json.Unmarshal([]byte(payloadJSON), &split); err != nil {
				return nil, fmt.Errorf("failed to unmarshal split artifact: %w", err)
			}
			set.Split = &split
		case ArtifactSavings:
			var savings actuarial.SavingsScenario
			if err := json.Unmarshal([]byte(payloadJSON), &savings); err != nil {
				return nil, fmt.Errorf("failed to unmarshal savings artifact: %w", err)
			}
			set.Savings = &savings
		case ArtifactCompliance:
			var comp compliance.Result
			if err := json.Unmarshal([]byte(payloadJSON), &comp); err != nil {
				return nil, fmt.Errorf("failed to unmarshal compliance artifact: %w", err)
			}
			set.Compliance = &comp
		}
	}

	return set, rows.Err()
}

// GetArtifactTimestamp возвращает время генерации артефакта
func (db *StagingDB) GetArtifactTimestamp(prospectID, kind string) (time.Time, error) {
	var generatedAt string
	err := db.conn.QueryRow(`
		SELECT generated_at FROM prospect_artifacts WHERE prospect_id = ? AND kind = ?`,
		prospectID, kind).Scan(&generatedAt)
	if err == sql.ErrNoRows {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query artifact timestamp: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, generatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse artifact timestamp: %w", err)
	}
	return ts, nil
}
