package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testLedger(t *testing.T) (l *Ledger) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "applications.json")
	l, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	return l
}

func TestOpenAbsentFile(t *testing.T) {
	l := testLedger(t)

	if len(l.List()) != 0 {
		t.Errorf("Expected empty ledger, got %d records", len(l.List()))
	}
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications.json")
	err := os.WriteFile(path, []byte("this is not json"), 0600)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	l, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if len(l.List()) != 0 {
		t.Errorf("Expected corrupt file to start an empty ledger, got %d records", len(l.List()))
	}
}

func TestAppendAssignsSequentialIDs(t *testing.T) {
	l := testLedger(t)

	first, err := l.Append(Application{JobTitle: "Engineer"})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	second, err := l.Append(Application{JobTitle: "Manager"})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if first.ID != 1 || second.ID != 2 {
		t.Errorf("Expected ids 1 and 2, got %d and %d", first.ID, second.ID)
	}

	if first.DateCreated.IsZero() {
		t.Error("Expected DateCreated to be stamped")
	}
}

func TestAppendDefaultsJobTitle(t *testing.T) {
	l := testLedger(t)

	stored, err := l.Append(Application{})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if stored.JobTitle != DefaultJobTitle {
		t.Errorf("Expected default job title %q, got %q", DefaultJobTitle, stored.JobTitle)
	}
}

func TestIDAssignmentAfterDelete(t *testing.T) {
	l := testLedger(t)

	for i := 0; i < 3; i++ {
		_, err := l.Append(Application{})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	// Delete the record with the highest id, then two more appends.
	err := l.DeleteMany([]int{3})
	if err != nil {
		t.Fatalf("DeleteMany failed: %v", err)
	}

	stored, err := l.Append(Application{})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// max(1, 2) + 1 = 3: the freed slot at the top is filled again, but
	// deleting from the middle never shifts surviving ids.
	if stored.ID != 3 {
		t.Errorf("Expected id 3 after deleting the top record, got %d", stored.ID)
	}

	err = l.DeleteMany([]int{2})
	if err != nil {
		t.Fatalf("DeleteMany failed: %v", err)
	}

	stored, err = l.Append(Application{})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if stored.ID != 4 {
		t.Errorf("Expected id 4, got %d", stored.ID)
	}

	if _, found := l.Get(2); found {
		t.Error("Expected id 2 to stay deleted")
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications.json")

	l, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	_, err = l.Append(Application{
		JobTitle:       "Senior Engineer",
		OriginalResume: "/tmp/resume.tex",
		TailoredResume: "/tmp/resume_tailored.tex",
		Company:        "Acme Corp",
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	reopened, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}

	apps := reopened.List()
	if len(apps) != 1 {
		t.Fatalf("Expected 1 record after reopen, got %d", len(apps))
	}

	if apps[0].JobTitle != "Senior Engineer" {
		t.Errorf("Expected job title to survive the round trip, got %q", apps[0].JobTitle)
	}

	if apps[0].Company != "Acme Corp" {
		t.Errorf("Expected company to survive the round trip, got %q", apps[0].Company)
	}
}

func TestUpdateMergesNonEmptyFields(t *testing.T) {
	l := testLedger(t)

	stored, err := l.Append(Application{JobTitle: "Engineer", Company: "Acme"})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	found, err := l.Update(stored.ID, UpdateFields{Notes: "phone screen on Friday"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !found {
		t.Fatal("Expected record to be found")
	}

	app, _ := l.Get(stored.ID)
	if app.Notes != "phone screen on Friday" {
		t.Errorf("Expected notes to be set, got %q", app.Notes)
	}

	// The empty company field must not clear the existing value.
	if app.Company != "Acme" {
		t.Errorf("Expected company to be unchanged, got %q", app.Company)
	}

	if app.Applied {
		t.Error("Expected applied to stay false")
	}

	if app.ApplicationDate != nil {
		t.Error("Expected no application date without applied")
	}
}

func TestUpdateAppliedStampsDate(t *testing.T) {
	l := testLedger(t)

	stored, err := l.Append(Application{})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	before := time.Now()

	found, err := l.Update(stored.ID, UpdateFields{Applied: true})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !found {
		t.Fatal("Expected record to be found")
	}

	app, _ := l.Get(stored.ID)
	if !app.Applied {
		t.Error("Expected applied to be true")
	}

	if app.ApplicationDate == nil {
		t.Fatal("Expected application date to be stamped")
	}

	if app.ApplicationDate.Before(before.Add(-time.Second)) {
		t.Errorf("Application date %v is implausibly old", app.ApplicationDate)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	l := testLedger(t)

	found, err := l.Update(42, UpdateFields{Applied: true})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if found {
		t.Error("Expected found=false for unknown id")
	}
}

func TestLedgerFileIsValidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications.json")

	l, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	_, err = l.Append(Application{JobTitle: "Engineer"})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	var apps []Application
	err = json.Unmarshal(data, &apps)
	if err != nil {
		t.Fatalf("Ledger file is not valid JSON: %v", err)
	}

	if len(apps) != 1 {
		t.Errorf("Expected 1 record in file, got %d", len(apps))
	}
}
