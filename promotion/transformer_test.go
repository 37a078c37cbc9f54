package promotion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoteserver/actuarial"
	"quoteserver/database"
)

func TestTransformBuildsFullRecordGraph(t *testing.T) {
	prospect := validProspect()
	artifacts := validArtifacts(t)

	record, err := NewTransformer().Transform(prospect, artifacts, "client-001", BlueprintVersion)
	require.NoError(t, err)

	// Every record in the graph carries the same client id
	assert.Equal(t, "client-001", record.Client.ClientID)
	assert.Equal(t, "client-001", record.Compliance.ClientID)
	assert.Equal(t, "client-001", record.Financial.ClientID)
	assert.Equal(t, "client-001", record.Savings.ClientID)
	for _, emp := range record.Employees {
		assert.Equal(t, "client-001", emp.ClientID)
	}

	assert.Equal(t, prospect.ProspectID, record.Client.ProspectID)
	assert.Equal(t, "12-3456789", record.Client.TaxID)
	assert.Equal(t, "CA", record.Client.State)
	assert.Equal(t, BlueprintVersion, record.BlueprintVersion)
}

func TestTransformCanonicalizesFields(t *testing.T) {
	prospect := validProspect()
	prospect.TaxID = "123456789"
	prospect.State = " ca "
	prospect.RenewalDate = "01/15/2027"

	record, err := NewTransformer().Transform(prospect, validArtifacts(t), "client-002", BlueprintVersion)
	require.NoError(t, err)

	assert.Equal(t, "12-3456789", record.Client.TaxID)
	assert.Equal(t, "CA", record.Client.State)
	assert.Equal(t, "2027-01-15", record.Client.RenewalDate)
}

func TestTransformTagsEmployeeTiersFromCensus(t *testing.T) {
	prospect := validProspect()
	prospect.Census = []database.CensusMember{
		{Age: 40, Gender: "m", AnnualClaims: 1000},
		{Age: 50, Gender: "f", AnnualClaims: 95000},
		{Age: 30, Gender: "f", AnnualClaims: 500},
	}
	prospect.EmployeeCount = 3

	artifacts := validArtifacts(t)
	split, err := actuarial.NewUtilizerSplitEngine().Split(3, 96500)
	require.NoError(t, err)
	artifacts.Split = split

	record, err := NewTransformer().Transform(prospect, artifacts, "client-003", BlueprintVersion)
	require.NoError(t, err)
	require.Len(t, record.Employees, 3)

	// Employees are ranked by claims descending, top highCount get the high tier
	assert.Equal(t, database.TierHigh, record.Employees[0].Tier)
	assert.Equal(t, 95000.0, record.Employees[0].AnnualClaims)
	assert.Equal(t, database.TierStandard, record.Employees[1].Tier)
	assert.Equal(t, database.TierStandard, record.Employees[2].Tier)

	assert.Equal(t, "F", record.Employees[0].Gender)
	assert.Equal(t, "client-003-EMP-0001", record.Employees[0].EmployeeID)
	assert.Equal(t, "client-003-EMP-0003", record.Employees[2].EmployeeID)
}

func TestTransformSynthesizesEmployeesWithoutCensus(t *testing.T) {
	prospect := validProspect()
	prospect.Census = nil

	artifacts := validArtifacts(t)
	record, err := NewTransformer().Transform(prospect, artifacts, "client-004", BlueprintVersion)
	require.NoError(t, err)

	split := artifacts.Split
	require.Len(t, record.Employees, split.EmployeeTotal)

	high := 0
	for _, emp := range record.Employees {
		if emp.Tier == database.TierHigh {
			high++
			assert.Equal(t, split.HighUtilizers.AvgPerEmployee, emp.AnnualClaims)
		} else {
			assert.Equal(t, split.StandardUtilizers.AvgPerEmployee, emp.AnnualClaims)
		}
	}
	assert.Equal(t, split.HighUtilizers.Count, high)
}

func TestTransformCopiesFinancialAndSavingsFigures(t *testing.T) {
	artifacts := validArtifacts(t)

	record, err := NewTransformer().Transform(validProspect(), artifacts, "client-005", BlueprintVersion)
	require.NoError(t, err)

	assert.Equal(t, artifacts.Simulation.Summary.P95, record.Financial.P95)
	assert.Equal(t, artifacts.Simulation.Iterations, record.Financial.Iterations)
	assert.Equal(t, artifacts.Split.CostMultiplier, record.Financial.CostMultiplier)
	assert.Equal(t, artifacts.Savings.SavingsAmount, record.Savings.SavingsAmount)

	var forward []actuarial.ForwardProjection
	require.NoError(t, json.Unmarshal([]byte(record.Savings.ForwardJSON), &forward))
	assert.Equal(t, artifacts.Savings.Forward, forward)
}

func TestTransformFailsOnMissingArtifact(t *testing.T) {
	artifacts := validArtifacts(t)
	artifacts.Split = nil

	_, err := NewTransformer().Transform(validProspect(), artifacts, "client-006", BlueprintVersion)

	var transformErr *TransformationError
	require.ErrorAs(t, err, &transformErr)
	assert.Equal(t, "split", transformErr.Field)
}

func TestTransformFailsOnMalformedTaxID(t *testing.T) {
	prospect := validProspect()
	prospect.TaxID = "12-34"

	_, err := NewTransformer().Transform(prospect, validArtifacts(t), "client-007", BlueprintVersion)

	var transformErr *TransformationError
	require.ErrorAs(t, err, &transformErr)
	assert.Equal(t, "tax_id", transformErr.Field)
}

func TestCanonicalTaxID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "already canonical", input: "12-3456789", want: "12-3456789"},
		{name: "bare digits", input: "123456789", want: "12-3456789"},
		{name: "spaces and dots", input: "12 345.67.89", want: "12-3456789"},
		{name: "too short", input: "12345", wantErr: true},
		{name: "too long", input: "1234567890", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalTaxID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "2027-01-15", want: "2027-01-15"},
		{input: "01/15/2027", want: "2027-01-15"},
		{input: "January 15, 2027", want: "2027-01-15"},
		{input: "2027-01-15T10:30:00Z", want: "2027-01-15"},
	}

	for _, tt := range tests {
		got, err := NormalizeDate(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}

	_, err := NormalizeDate("next tuesday")
	assert.Error(t, err)
}

