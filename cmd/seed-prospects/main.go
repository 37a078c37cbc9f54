// Утилита генерации тестовых проспектов для staging базы.
// Использование: seed-prospects [-db staging.db] [-count 25] [-seed 0]
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"quoteserver/database"
)

var states = []string{"CA", "NY", "TX", "FL", "IL", "WA", "MA", "CO", "GA", "OH"}

var industries = []string{
	"Manufacturing", "Healthcare", "Technology", "Retail",
	"Construction", "Logistics", "Hospitality", "Finance",
}

var coverageTiers = []string{"employee", "employee+spouse", "family"}

func main() {
	dbPath := flag.String("db", "staging.db", "путь к staging базе данных")
	count := flag.Int("count", 25, "количество проспектов")
	seed := flag.Int64("seed", 0, "seed генератора (0 = случайный)")
	flag.Parse()

	gofakeit.Seed(*seed)

	db, err := database.NewStagingDB(*dbPath)
	if err != nil {
		log.Fatalf("Ошибка открытия staging базы: %v", err)
	}
	defer db.Close()

	for i := 0; i < *count; i++ {
		prospect := generateProspect()
		if err := db.CreateProspect(prospect); err != nil {
			log.Fatalf("Ошибка создания проспекта %s: %v", prospect.ProspectID, err)
		}
		fmt.Printf("✓ %s  %-35s %3d сотрудников  %s\n",
			prospect.ProspectID[:8], prospect.CompanyName, prospect.EmployeeCount, prospect.State)
	}

	log.Printf("Сгенерировано %d проспектов в %s", *count, *dbPath)
}

func generateProspect() *database.Prospect {
	employeeCount := gofakeit.Number(15, 600)

	// Средний годовой убыток на сотрудника 8-16 тыс.
	totalClaims := float64(employeeCount) * gofakeit.Float64Range(8000, 16000)
	totalClaims = math.Round(totalClaims*100) / 100

	// Перепись заполняем не всем: часть проспектов приходит только
	// с агрегатами, как и в реальном потоке
	var census []database.CensusMember
	if gofakeit.Bool() {
		censusSize := employeeCount
		if censusSize > 50 {
			censusSize = 50
		}
		census = make([]database.CensusMember, censusSize)
		for i := range census {
			census[i] = database.CensusMember{
				Age:          gofakeit.Number(22, 64),
				Gender:       gofakeit.RandomString([]string{"M", "F"}),
				Dependents:   gofakeit.Number(0, 4),
				CoverageTier: gofakeit.RandomString(coverageTiers),
				AnnualClaims: database.ClaimAmount(math.Round(gofakeit.Float64Range(500, 95000)*100) / 100),
			}
		}
	}

	currentYear := time.Now().Year()
	history := make([]database.AnnualClaims, 3)
	for i := range history {
		history[i] = database.AnnualClaims{
			Year:  currentYear - 3 + i,
			Total: database.ClaimAmount(math.Round(totalClaims*gofakeit.Float64Range(0.85, 1.1)*100) / 100),
		}
	}

	renewal := time.Now().AddDate(0, gofakeit.Number(1, 11), 0)

	return &database.Prospect{
		ProspectID:    uuid.New().String(),
		CompanyName:   gofakeit.Company(),
		TaxID:         fmt.Sprintf("%02d-%07d", gofakeit.Number(10, 99), gofakeit.Number(1000000, 9999999)),
		Industry:      gofakeit.RandomString(industries),
		EmployeeCount: employeeCount,
		State:         gofakeit.RandomString(states),
		RenewalDate:   renewal.Format("2006-01-02"),
		Status:        database.ProspectStatusProspect,
		TotalClaims:   database.ClaimAmount(totalClaims),
		Census:        census,
		ClaimsHistory: history,
	}
}
