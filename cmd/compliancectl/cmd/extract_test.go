package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bgiacomelli/meli-compliance-monitoring/internal/config"
)

func TestApplyExtractFlags(t *testing.T) {
	cfg := config.Default()

	extractLimit = 120
	extractPageSize = 40
	extractStatus = "in_progress"
	defer func() { extractLimit, extractPageSize, extractStatus = 0, 0, "" }()

	applyExtractFlags(extractCmd, &cfg)

	if cfg.Limit != 120 || cfg.PageSize != 40 || cfg.Status != "in_progress" {
		t.Errorf("cfg = %+v", cfg)
	}
	// Untouched flags keep config values.
	if cfg.OutDir != "data" {
		t.Errorf("OutDir = %q, want default data", cfg.OutDir)
	}
}

func TestKeysByCount(t *testing.T) {
	got := keysByCount(map[string]int{"low": 2, "high": 5, "medium": 2})
	want := []string{"high", "low", "medium"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("keysByCount = %v, want %v", got, want)
	}
}

func TestVerifyCSV(t *testing.T) {
	dir := t.TempDir()

	good := "alert_id,type_of_alert,status,assigned_to_name,creation_date,resolution_date,impact_level,sla_hours,jurisdiction,category,tax_code,monetary_exposure,has_invoice_linked,order_id,invoice_id\n"
	for i := 0; i < 100; i++ {
		good += "ALRT-1,MISSING_INVOICE,open,Ana,2024-01-01,,high,48,BR-SP,Books,ICMS,10.5,true,O1,INV-1\n"
	}
	goodPath := filepath.Join(dir, "good.csv")
	os.WriteFile(goodPath, []byte(good), 0o644)
	if err := verifyCSV(goodPath); err != nil {
		t.Errorf("verifyCSV(good) = %v", err)
	}

	shortPath := filepath.Join(dir, "short.csv")
	os.WriteFile(shortPath, []byte(good[:len(good)/2]), 0o644)
	if err := verifyCSV(shortPath); err == nil {
		t.Error("verifyCSV accepted a file with < 100 rows")
	}

	badHeader := "alert_id,status\nALRT-1,open\n"
	badPath := filepath.Join(dir, "bad.csv")
	os.WriteFile(badPath, []byte(badHeader), 0o644)
	if err := verifyCSV(badPath); err == nil {
		t.Error("verifyCSV accepted a truncated header")
	}
}
