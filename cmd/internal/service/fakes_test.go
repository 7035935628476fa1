package service

import (
	"errors"
	"nabha/cmd/internal/domain/entity"
	"nabha/cmd/internal/domain/ledger"
	"nabha/cmd/internal/utils/validators"
	"sort"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newValidate() *validator.Validate {
	v := validator.New()
	validators.Register(v)
	return v
}

func openLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*entity.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) FindByID(id string) (*entity.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) FindByPhone(phone string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByRole(role string) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeUserRepo) ExistsByPhone(phone string) (bool, error) {
	u, _ := f.FindByPhone(phone)
	return u != nil, nil
}

func (f *fakeUserRepo) Create(user *entity.User) error {
	f.users[user.ID] = user
	return nil
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	records []*entity.HealthRecord
}

func (f *fakeRecordRepo) Create(record *entity.HealthRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeRecordRepo) FindAll() ([]*entity.HealthRecord, error) {
	return f.records, nil
}

func (f *fakeRecordRepo) FindByPatientID(id string) ([]*entity.HealthRecord, error) {
	var out []*entity.HealthRecord
	for _, r := range f.records {
		if r.PatientID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) FindByDoctorID(id string) ([]*entity.HealthRecord, error) {
	var out []*entity.HealthRecord
	for _, r := range f.records {
		if r.DoctorID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	mu         sync.Mutex
	appts      map[string]*entity.Appointment
	records    *fakeRecordRepo
	failRecord bool
	// beforeWrite runs inside Transition ahead of the status check.
	beforeWrite func()
}

func newFakeAppointmentRepo(records *fakeRecordRepo) *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: map[string]*entity.Appointment{}, records: records}
}

func (f *fakeAppointmentRepo) FindByID(id string) (*entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt, ok := f.appts[id]
	if !ok {
		return nil, nil
	}
	out := *appt
	return &out, nil
}

func (f *fakeAppointmentRepo) FindAll() ([]*entity.Appointment, error) {
	return f.filter(func(*entity.Appointment) bool { return true }), nil
}

func (f *fakeAppointmentRepo) FindByPatientID(id string) ([]*entity.Appointment, error) {
	return f.filter(func(a *entity.Appointment) bool { return a.PatientID == id }), nil
}

func (f *fakeAppointmentRepo) FindByDoctorID(id string) ([]*entity.Appointment, error) {
	return f.filter(func(a *entity.Appointment) bool { return a.DoctorID == id }), nil
}

func (f *fakeAppointmentRepo) Create(appointment *entity.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := *appointment
	f.appts[appointment.ID] = &out
	return nil
}

func (f *fakeAppointmentRepo) Transition(appointment *entity.Appointment, from string, record *entity.HealthRecord) (bool, error) {
	if f.beforeWrite != nil {
		f.beforeWrite()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.appts[appointment.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	if record != nil && f.failRecord {
		return false, errBoom
	}

	stored.Status = appointment.Status
	stored.UpdatedAt = appointment.UpdatedAt
	if record != nil {
		return true, f.records.Create(record)
	}
	return true, nil
}

func (f *fakeAppointmentRepo) SetPrescription(appointment *entity.Appointment) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.appts[appointment.ID]
	if !ok || stored.Status == entity.AppointmentCancelled {
		return false, nil
	}
	stored.Prescription = appointment.Prescription
	stored.UpdatedAt = appointment.UpdatedAt
	return true, nil
}

func (f *fakeAppointmentRepo) filter(keep func(*entity.Appointment) bool) []*entity.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Appointment
	for _, a := range f.appts {
		if keep(a) {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date+out[i].Time < out[j].Date+out[j].Time })
	return out
}

type fakeMedicineRepo struct {
	medicines map[string]*entity.Medicine
}

func newFakeMedicineRepo(medicines ...*entity.Medicine) *fakeMedicineRepo {
	repo := &fakeMedicineRepo{medicines: map[string]*entity.Medicine{}}
	for _, m := range medicines {
		repo.medicines[m.ID] = m
	}
	return repo
}

func (f *fakeMedicineRepo) FindByID(id string) (*entity.Medicine, error) {
	return f.medicines[id], nil
}

func (f *fakeMedicineRepo) FindAll() ([]*entity.Medicine, error) {
	var out []*entity.Medicine
	for _, m := range f.medicines {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeStockRepo struct {
	mu   sync.Mutex
	rows map[string]*entity.PharmacyStock
}

func newFakeStockRepo(rows ...*entity.PharmacyStock) *fakeStockRepo {
	repo := &fakeStockRepo{rows: map[string]*entity.PharmacyStock{}}
	for _, r := range rows {
		repo.rows[r.ID] = r
	}
	return repo
}

func (f *fakeStockRepo) FindByID(id string) (*entity.PharmacyStock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	out := *row
	return &out, nil
}

func (f *fakeStockRepo) FindAll(filter string) ([]*entity.PharmacyStock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.PharmacyStock
	for _, r := range f.rows {
		switch filter {
		case entity.StockFilterInStock:
			if r.Availability() != entity.StockInStock {
				continue
			}
		case entity.StockFilterLowStock:
			if r.Availability() != entity.StockLowStock {
				continue
			}
		case entity.StockFilterOutOfStock:
			if r.Availability() != entity.StockOutOfStock {
				continue
			}
		}
		c := *r
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MedicineName < out[j].MedicineName })
	return out, nil
}

func (f *fakeStockRepo) Create(stock *entity.PharmacyStock) error {
	return f.Save(stock)
}

func (f *fakeStockRepo) Save(stock *entity.PharmacyStock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := *stock
	f.rows[stock.ID] = &out
	return nil
}

func (f *fakeStockRepo) SetByMedicineID(medicineID string, pharmacyID *string, newStock int, now int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rows {
		if r.MedicineID != medicineID || (pharmacyID != nil && r.PharmacyID != *pharmacyID) {
			continue
		}
		r.CurrentStock = newStock
		r.UpdatedAt = now
		n++
	}
	return n, nil
}

func (f *fakeStockRepo) Reserve(id string, quantity int, now int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || r.CurrentStock < quantity {
		return false, nil
	}
	r.CurrentStock -= quantity
	r.UpdatedAt = now
	return true, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []*entity.Notification
	err  error
}

func (p *recordingPublisher) Publish(n *entity.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	return p.err
}

var (
	patient = &entity.User{ID: "patient-1", Name: "Amarjit Kaur", Phone: "+919876543211", Role: entity.RolePatient}
	other   = &entity.User{ID: "patient-2", Name: "Gurpreet Singh", Phone: "+919876543212", Role: entity.RolePatient}
	doctor  = &entity.User{ID: "doctor-1", Name: "Dr. Preet Singh", Phone: "+919876543210", Role: entity.RoleDoctor}
	chemist = &entity.User{ID: "pharmacy-1", Name: "Nabha Medical Store", Phone: "+919876543213", Role: entity.RolePharmacy}
	rival   = &entity.User{ID: "pharmacy-2", Name: "Civil Hospital Dispensary", Phone: "+919876543214", Role: entity.RolePharmacy}
	admin   = &entity.User{ID: "admin-1", Name: "Admin", Phone: "+919876543215", Role: entity.RoleAdmin}
)

func cloneUsers() []*entity.User {
	out := []*entity.User{}
	for _, u := range []*entity.User{patient, other, doctor, chemist, rival, admin} {
		c := *u
		out = append(out, &c)
	}
	return out
}
