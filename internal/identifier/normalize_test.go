// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identifier

import (
	"testing"

	"go.uber.org/zap"

	"github.com/pdiddy/litgraph/pkg/types"
)

func TestDOI(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare doi", "10.1145/3292500.3330919", "10.1145/3292500.3330919", false},
		{"upper-cased", "10.1016/J.CELL.2020.01.021", "10.1016/j.cell.2020.01.021", false},
		{"resolver prefix", "https://doi.org/10.5555/12345678", "10.5555/12345678", false},
		{"dx resolver prefix", "http://dx.doi.org/10.1000/182", "10.1000/182", false},
		{"doi scheme", "doi:10.1038/nature14539", "10.1038/nature14539", false},
		{"surrounding whitespace", "  10.1000/182  ", "10.1000/182", false},
		{"missing suffix", "10.1145/", "", true},
		{"not a doi", "hello-world", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DOI(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DOI(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DOI(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestArxiv(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare new-style", "1706.03762", "1706.03762", false},
		{"version stripped", "1706.03762v5", "1706.03762", false},
		{"arXiv prefix", "arXiv:2301.07041", "2301.07041", false},
		{"prefix and version", "arXiv:2301.07041v2", "2301.07041", false},
		{"old-style", "hep-th/9901001", "hep-th/9901001", false},
		{"old-style with class", "math.GT/0309136", "math.GT/0309136", false},
		{"too few digits", "1706.037", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Arxiv(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Arxiv(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Arxiv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPMID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare", "31110280", "31110280", false},
		{"prefixed", "PMID: 31110280", "31110280", false},
		{"prefixed no colon", "PMID31110280", "31110280", false},
		{"leading zeros stripped", "0031110280", "", true}, // 10 digits, too long
		{"short id", "123", "123", false},
		{"alpha", "PMC1234567", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PMID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PMID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("PMID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "https://arxiv.org/abs/1706.03762", "https://arxiv.org/abs/1706.03762", false},
		{"tracking stripped", "https://example.org/paper?utm_source=x&utm_medium=y&id=7", "https://example.org/paper?id=7", false},
		{"fbclid stripped", "https://example.org/p?fbclid=abc123", "https://example.org/p", false},
		{"fragment dropped", "https://example.org/p#section-2", "https://example.org/p", false},
		{"host lower-cased", "https://ArXiv.ORG/abs/1", "https://arxiv.org/abs/1", false},
		{"ftp rejected", "ftp://example.org/p.pdf", "", true},
		{"garbage", "://nope", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := URL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("URL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("URL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeDropsMalformed(t *testing.T) {
	raw := types.RawIdentifiers{
		DOI:     "not-a-doi",
		ArxivID: "1706.03762v5",
		PMID:    "PMID: 31110280",
		URLs:    []string{"https://example.org/p?utm_source=x", "://bad"},
	}

	set := Normalize(raw, zap.NewNop())

	if set.DOI != "" {
		t.Errorf("malformed DOI kept: %q", set.DOI)
	}
	if set.ArxivID != "1706.03762" {
		t.Errorf("ArxivID = %q, want %q", set.ArxivID, "1706.03762")
	}
	if set.PMID != "31110280" {
		t.Errorf("PMID = %q, want %q", set.PMID, "31110280")
	}
	if len(set.SourceURLs) != 1 || set.SourceURLs[0] != "https://example.org/p" {
		t.Errorf("SourceURLs = %v", set.SourceURLs)
	}
}
