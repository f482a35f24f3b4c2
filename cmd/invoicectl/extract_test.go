package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const acmeDump = `{"fragments":[
 {"text":"ACME CORP","bounding_box":[[10,10],[120,10],[120,24],[10,24]],"confidence":0.98,"page":1},
 {"text":"Invoice No: INV-2023-001","bounding_box":[[10,40],[220,40],[220,54],[10,54]],"confidence":0.98,"page":1},
 {"text":"Date: 2023-10-25","bounding_box":[[10,70],[200,70],[200,84],[10,84]],"confidence":0.98,"page":1},
 {"text":"Subtotal:","bounding_box":[[10,100],[90,100],[90,114],[10,114]],"confidence":0.98,"page":1},
 {"text":"$100.00","bounding_box":[[300,102],[360,102],[360,116],[300,116]],"confidence":0.98,"page":1},
 {"text":"Tax (10%): $10.00","bounding_box":[[10,130],[200,130],[200,144],[10,144]],"confidence":0.98,"page":1},
 {"text":"Total: $110.00","bounding_box":[[10,160],[200,160],[200,174],[10,174]],"confidence":0.98,"page":1}
]}`

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		extractLines, extractSave, extractServer = false, false, ""
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("invoicectl %v: %v", args, err)
	}
	return out.String()
}

func writeDump(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "acme.json")
	if err := os.WriteFile(path, []byte(acmeDump), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractCommand(t *testing.T) {
	out := runCLI(t, "extract", writeDump(t))

	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	want := map[string]any{
		"vendor_name":      "ACME CORP",
		"invoice_number":   "INV-2023-001",
		"invoice_date":     "2023-10-25",
		"currency":         "USD",
		"subtotal":         "100.00",
		"tax":              "10.00",
		"total":            "110.00",
		"confidence_score": 1.0,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestExtractCommandLines(t *testing.T) {
	out := runCLI(t, "extract", "--lines", writeDump(t))

	var got []string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 6 || got[3] != "Subtotal: $100.00" {
		t.Errorf("lines = %q", got)
	}
}
