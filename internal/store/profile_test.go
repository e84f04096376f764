package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProfileCreateAssignsID(t *testing.T) {
	s := newTestStore(t)

	p := &Profile{Name: "studio", TiltSensitivity: 15, ChannelSmoothing: 0.3, LipSyncGain: 2.0}
	if err := s.Profiles().Create(p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" {
		t.Fatal("create should assign an ID")
	}

	got, err := s.Profiles().GetByID(p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "studio" || got.TiltSensitivity != 15 {
		t.Errorf("got %+v, want name=studio tilt=15", got)
	}
}

func TestProfileGetByIDNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Profiles().GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestProfileUpdate(t *testing.T) {
	s := newTestStore(t)

	p := &Profile{Name: "studio", TiltSensitivity: 15}
	if err := s.Profiles().Create(p); err != nil {
		t.Fatalf("create: %v", err)
	}

	p.TiltSensitivity = 22
	if err := s.Profiles().Update(p); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.Profiles().GetByID(p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TiltSensitivity != 22 {
		t.Errorf("TiltSensitivity = %v, want 22", got.TiltSensitivity)
	}

	missing := &Profile{ID: "missing", Name: "x"}
	if err := s.Profiles().Update(missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing: err = %v, want ErrNotFound", err)
	}
}

func TestProfileSetActiveIsExclusive(t *testing.T) {
	s := newTestStore(t)

	a := &Profile{Name: "a"}
	b := &Profile{Name: "b"}
	if err := s.Profiles().Create(a); err != nil {
		t.Fatal(err)
	}
	if err := s.Profiles().Create(b); err != nil {
		t.Fatal(err)
	}

	if err := s.Profiles().SetActive(a.ID); err != nil {
		t.Fatalf("set active a: %v", err)
	}
	if err := s.Profiles().SetActive(b.ID); err != nil {
		t.Fatalf("set active b: %v", err)
	}

	active, err := s.Profiles().GetActive()
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.ID != b.ID {
		t.Errorf("active = %s, want %s", active.ID, b.ID)
	}

	gotA, err := s.Profiles().GetByID(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gotA.Active {
		t.Error("profile a should have been deactivated")
	}

	if err := s.Profiles().SetActive("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("set active missing: err = %v, want ErrNotFound", err)
	}
}

func TestProfileDeleteCascadesAliases(t *testing.T) {
	s := newTestStore(t)

	p := &Profile{Name: "studio"}
	if err := s.Profiles().Create(p); err != nil {
		t.Fatal(err)
	}
	if err := s.Profiles().SetAlias(p.ID, "mouthOpen", "ParamMouthOpen"); err != nil {
		t.Fatalf("set alias: %v", err)
	}

	if err := s.Profiles().Delete(p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var count int
	if err := s.DB().QueryRow(
		"SELECT COUNT(*) FROM param_aliases WHERE profile_id = ?", p.ID,
	).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("alias count after delete = %d, want 0", count)
	}
}

func TestAliasUpsertAndDelete(t *testing.T) {
	s := newTestStore(t)

	p := &Profile{Name: "studio"}
	if err := s.Profiles().Create(p); err != nil {
		t.Fatal(err)
	}

	if err := s.Profiles().SetAlias(p.ID, "mouthOpen", "ParamMouthOpen"); err != nil {
		t.Fatal(err)
	}
	if err := s.Profiles().SetAlias(p.ID, "mouthOpen", "ParamMouthOpenY"); err != nil {
		t.Fatal(err)
	}
	if err := s.Profiles().SetAlias(p.ID, "eyeLeft", "ParamEyeLOpen"); err != nil {
		t.Fatal(err)
	}

	aliases, err := s.Profiles().GetAliases(p.ID)
	if err != nil {
		t.Fatalf("get aliases: %v", err)
	}
	if len(aliases) != 2 {
		t.Fatalf("alias count = %d, want 2", len(aliases))
	}
	if aliases["mouthOpen"] != "ParamMouthOpenY" {
		t.Errorf("mouthOpen alias = %q, want upserted ParamMouthOpenY", aliases["mouthOpen"])
	}

	if err := s.Profiles().DeleteAlias(p.ID, "eyeLeft"); err != nil {
		t.Fatalf("delete alias: %v", err)
	}
	if err := s.Profiles().DeleteAlias(p.ID, "eyeLeft"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing alias: err = %v, want ErrNotFound", err)
	}
}

func TestProfileList(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"a", "b", "c"} {
		if err := s.Profiles().Create(&Profile{Name: name}); err != nil {
			t.Fatal(err)
		}
	}

	profiles, err := s.Profiles().List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(profiles) != 3 {
		t.Errorf("list count = %d, want 3", len(profiles))
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Settings().Get("tracking"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get missing: err = %v, want ErrNotFound", err)
	}

	if err := s.Settings().Set("tracking", "on"); err != nil {
		t.Fatal(err)
	}
	if err := s.Settings().Set("tracking", "off"); err != nil {
		t.Fatal(err)
	}

	got, err := s.Settings().Get("tracking")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "off" {
		t.Errorf("value = %q, want off", got)
	}

	if err := s.Settings().Delete("tracking"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Settings().Get("tracking"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: err = %v, want ErrNotFound", err)
	}
}
