package service

import (
	"nabha/cmd/internal/domain/entity"
	"nabha/cmd/internal/utils/apierror"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealthRecordService(t *testing.T) (*DefaultHealthRecordService, *fakeRecordRepo, *NotificationFeed) {
	records := &fakeRecordRepo{}
	feed := NewNotificationFeed(nil)
	svc := NewHealthRecordService(records, newFakeUserRepo(cloneUsers()...), openLedger(t), feed, newValidate())
	return svc, records, feed
}

func vaccination() *HealthRecordRequest {
	return &HealthRecordRequest{
		PatientID: patient.ID,
		Date:      "2025-01-20",
		Type:      entity.RecordVaccination,
		Diagnosis: "Tetanus booster",
		Symptoms:  []string{},
	}
}

func TestAddHealthRecord_DoctorAuthorsAndNotifies(t *testing.T) {
	svc, records, feed := newHealthRecordService(t)

	req := vaccination()
	req.DoctorID = "someone-else"
	record, apierr := svc.AddHealthRecord(req, doctor.ID)
	require.Nil(t, apierr)
	assert.Equal(t, doctor.ID, record.DoctorID)
	assert.Equal(t, "2025-01-20", record.Date)
	require.Len(t, records.records, 1)

	list := feed.List(patient.ID)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, "Health Record Added", list.Notifications[0].Title)
	assert.Equal(t, "New medical record has been added to your profile", list.Notifications[0].Message)
	assert.Equal(t, entity.NotificationHealth, list.Notifications[0].Type)
}

func TestAddHealthRecord_Rejections(t *testing.T) {
	svc, records, _ := newHealthRecordService(t)

	_, apierr := svc.AddHealthRecord(vaccination(), patient.ID)
	assert.Equal(t, apierror.ForbiddenError, apierr)

	_, apierr = svc.AddHealthRecord(vaccination(), admin.ID)
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())

	req := vaccination()
	req.PatientID = doctor.ID
	_, apierr = svc.AddHealthRecord(req, doctor.ID)
	assert.Equal(t, apierror.UnknownParticipantError, apierr)

	req = vaccination()
	req.Type = "horoscope"
	_, apierr = svc.AddHealthRecord(req, doctor.ID)
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())

	assert.Empty(t, records.records)
}

func TestGetHealthRecords_ScopedByRole(t *testing.T) {
	svc, _, _ := newHealthRecordService(t)
	_, apierr := svc.AddHealthRecord(vaccination(), doctor.ID)
	require.Nil(t, apierr)

	mine, apierr := svc.GetHealthRecords(patient.ID)
	require.Nil(t, apierr)
	assert.Len(t, mine, 1)

	theirs, apierr := svc.GetHealthRecords(other.ID)
	require.Nil(t, apierr)
	assert.Empty(t, theirs)

	authored, apierr := svc.GetHealthRecords(doctor.ID)
	require.Nil(t, apierr)
	assert.Len(t, authored, 1)

	_, apierr = svc.GetHealthRecords(chemist.ID)
	assert.Equal(t, apierror.ForbiddenError, apierr)
}

func TestVerifyLedger(t *testing.T) {
	svc, records, _ := newHealthRecordService(t)
	for i := 0; i < 3; i++ {
		_, apierr := svc.AddHealthRecord(vaccination(), doctor.ID)
		require.Nil(t, apierr)
	}

	_, apierr := svc.VerifyLedger(doctor.ID)
	assert.Equal(t, apierror.ForbiddenError, apierr)

	report, apierr := svc.VerifyLedger(admin.ID)
	require.Nil(t, apierr)
	assert.True(t, report.Valid)
	assert.True(t, report.ChainValid)
	assert.Equal(t, 3, report.Height)
	assert.Equal(t, 3, report.Records)
	assert.Empty(t, report.Tampered)

	records.records[1].Diagnosis = "Something else entirely"
	records.records = append(records.records, &entity.HealthRecord{ID: "smuggled", PatientID: patient.ID})

	report, apierr = svc.VerifyLedger(admin.ID)
	require.Nil(t, apierr)
	assert.False(t, report.Valid)
	assert.True(t, report.ChainValid)
	assert.Equal(t, []string{records.records[1].ID}, report.Tampered)
	assert.Equal(t, []string{"smuggled"}, report.Unsealed)
}
