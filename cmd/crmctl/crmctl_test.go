package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"fleet-crm/internal/models"
	testutil "fleet-crm/internal/testing"
)

func writeFixture(t *testing.T, name string, v any) string {
	t.Helper()
	var data []byte
	var err error
	if isYAMLPath(name) {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.Marshal(v)
	}
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSimilarityCommand(t *testing.T) {
	out, err := run(t, "similarity", "Frota Sul", "frota sul")
	require.NoError(t, err)
	assert.Equal(t, "100.0000\n", out)

	out, err = run(t, "similarity", "a b", "a c")
	require.NoError(t, err)
	assert.Equal(t, "33.3333\n", out)

	_, err = run(t, "similarity", "only-one")
	assert.Error(t, err)
}

func TestMatchCommand(t *testing.T) {
	contacts := writeFixture(t, "contacts.json", testutil.Contacts())
	companies := writeFixture(t, "companies.json", testutil.Companies())

	out, err := run(t, "match", "-c", contacts, "-k", companies)
	require.NoError(t, err)

	var results []models.MatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "c2", results[0].ContactID)
	assert.Equal(t, "k2", results[0].CompanyID)
	assert.InDelta(t, 95, results[0].Score, 0.001)
	assert.Equal(t, "c1", results[1].ContactID)
	assert.InDelta(t, 70, results[1].Score, 0.001)
}

func TestMatchCommandYAMLAndMinScore(t *testing.T) {
	contacts := writeFixture(t, "contacts.yaml", testutil.Contacts())
	companies := writeFixture(t, "companies.yml", testutil.Companies())

	out, err := run(t, "match", "-c", contacts, "-k", companies, "--min-score", "90", "-f", "yaml")
	require.NoError(t, err)

	var results []models.MatchResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "c2", results[0].ContactID)

	_, err = run(t, "match", "-c", contacts, "-k", companies, "--min-score", "101")
	assert.Error(t, err)
}

func TestMatchCommandRequiresFiles(t *testing.T) {
	_, err := run(t, "match")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")

	_, err = run(t, "match", "-c", "/does/not/exist.json", "-k", "/does/not/exist.json")
	assert.Error(t, err)
}

func TestKYCCommands(t *testing.T) {
	vehicles := writeFixture(t, "vehicles.json", testutil.Vehicles())

	out, err := run(t, "kyc", "vehicle", vehicles)
	require.NoError(t, err)
	var profiles []models.KYCProfile
	require.NoError(t, json.Unmarshal([]byte(out), &profiles))
	require.Len(t, profiles, 2)
	assert.Equal(t, 100, profiles[0].Score)
	assert.Equal(t, 15, profiles[1].Score)

	out, err = run(t, "kyc", "vehicle", vehicles, "--fleet")
	require.NoError(t, err)
	var fleets []models.FleetSummary
	require.NoError(t, json.Unmarshal([]byte(out), &fleets))
	require.Len(t, fleets, 1)
	assert.Equal(t, "k2", fleets[0].CompanyID)
	assert.Equal(t, 2, fleets[0].Vehicles)

	// A single object is accepted as a one-element list.
	single := writeFixture(t, "contact.json", testutil.Contacts()[0])
	out, err = run(t, "kyc", "contact", single)
	require.NoError(t, err)
	profiles = nil
	require.NoError(t, json.Unmarshal([]byte(out), &profiles))
	require.Len(t, profiles, 1)
	assert.Equal(t, models.SubjectContact, profiles[0].Subject)

	companies := writeFixture(t, "companies.json", testutil.Companies())
	out, err = run(t, "kyc", "company", companies)
	require.NoError(t, err)
	profiles = nil
	require.NoError(t, json.Unmarshal([]byte(out), &profiles))
	assert.Len(t, profiles, 3)
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate", "cpf", "52998224725")
	require.NoError(t, err)
	assert.Contains(t, out, "529.982.247-25")

	out, err = run(t, "validate", "cnpj", "11.222.333/0001-81", "11.222.333/0001-82")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "OK")
	assert.Contains(t, lines[1], "INVALID")

	out, err = run(t, "validate", "plate", "abc1d23")
	require.NoError(t, err)
	assert.Contains(t, out, "ABC1D23")
}
