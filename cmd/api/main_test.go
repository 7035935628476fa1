package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"nabha/cmd/internal/domain/entity"
	"nabha/cmd/internal/domain/ledger"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLedger(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	l, err := ledger.Open(dir)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		_, err := l.Append(&entity.HealthRecord{
			ID:        fmt.Sprintf("r%d", i),
			PatientID: "p1",
			DoctorID:  "d1",
			Date:      "2025-10-01",
			Type:      entity.RecordConsultation,
			Diagnosis: "Consultation completed",
		})
		require.NoError(t, err)
	}
	require.NoError(t, l.Close())
	return dir
}

func runLedger(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := ledgerCmd()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return out, cmd.Execute()
}

func TestLedgerShow_LatestByDefault(t *testing.T) {
	dir := seedLedger(t, 3)

	out, err := runLedger(t, "show", "--path", dir)
	require.NoError(t, err)

	var entry ledger.Entry
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, 2, entry.Height)
	assert.Equal(t, "r2", entry.RecordID)
}

func TestLedgerShow_ByHeight(t *testing.T) {
	dir := seedLedger(t, 3)

	out, err := runLedger(t, "show", "--path", dir, "--height", "0")
	require.NoError(t, err)

	var entry ledger.Entry
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "r0", entry.RecordID)

	_, err = runLedger(t, "show", "--path", dir, "--height", "7")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestLedgerShow_Empty(t *testing.T) {
	_, err := runLedger(t, "show", "--path", seedLedger(t, 0))
	assert.EqualError(t, err, "ledger is empty")
}

func TestLedgerVerify(t *testing.T) {
	out, err := runLedger(t, "verify", "--path", seedLedger(t, 2))
	require.NoError(t, err)

	var report ledger.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 2, report.Height)
	assert.True(t, report.Valid)
}
