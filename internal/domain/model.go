package domain

import (
    "encoding/json"
    "time"
)

// Core domain models shared by services and adapters. The JSON tags are the
// wire shape served to the UI and stored in scanned_links.scan_details.

type Status string

const (
    StatusSafe       Status = "safe"
    StatusSuspicious Status = "suspicious"
    StatusMalicious  Status = "malicious"
    StatusError      Status = "error"
)

// Valid reports whether s is one of the known verdicts.
func (s Status) Valid() bool {
    switch s {
    case StatusSafe, StatusSuspicious, StatusMalicious, StatusError:
        return true
    }
    return false
}

type ScanChecks struct {
    HTTPSEnabled         bool   `json:"httpsEnabled"`
    SuspiciousCharacters bool   `json:"suspiciousCharacters"`
    ShortenerService     bool   `json:"shortenerService"`
    DomainReputation     string `json:"domainReputation"`
    RedirectAnalysis     string `json:"redirectAnalysis"`
    CertificateValid     bool   `json:"certificateValid"`
    ThreatIntelligence   string `json:"threatIntelligence"`
}

// DefaultChecks returns the checks every scan starts from.
func DefaultChecks() ScanChecks {
    return ScanChecks{
        DomainReputation:   "clean",
        RedirectAnalysis:   "none",
        CertificateValid:   true,
        ThreatIntelligence: "clean",
    }
}

// Assessment is the detail block of a successful scan.
type Assessment struct {
    Domain           string     `json:"domain"`
    Protocol         string     `json:"protocol"`
    ThreatLevel      int        `json:"threatLevel"`
    DetectedPatterns []string   `json:"detectedPatterns"`
    Checks           ScanChecks `json:"checks"`
    ScanTimestamp    string     `json:"scanTimestamp"`
    ScanVersion      string     `json:"scanVersion"`
}

// Failure is the detail block of a scan that could not be scored.
type Failure struct {
    Error        string `json:"error"`
    ErrorDetails string `json:"errorDetails"`
}

// ScanDetails holds exactly one of Assessment or Failure. Both are embedded
// so their fields flatten into a single JSON object.
type ScanDetails struct {
    *Assessment
    *Failure
}

type ScanResult struct {
    Status      Status      `json:"status"`
    ScanDetails ScanDetails `json:"scanDetails"`
}

// ThreatDomain is a known-bad (or known-questionable) domain from a feed.
type ThreatDomain struct {
    Domain          string    `json:"domain" yaml:"domain"`
    ThreatType      string    `json:"threatType" yaml:"threatType"`
    ConfidenceLevel int       `json:"confidenceLevel" yaml:"confidenceLevel"`
    Source          string    `json:"source,omitempty" yaml:"source,omitempty"`
    UpdatedAt       time.Time `json:"updatedAt,omitempty" yaml:"-"`
}

// ScanRecord is one persisted row of a user's scan history.
type ScanRecord struct {
    ID          int64           `json:"id"`
    UserID      string          `json:"-"`
    URL         string          `json:"url"`
    Status      Status          `json:"status"`
    ScanDetails json.RawMessage `json:"scanDetails"`
    ScannedAt   time.Time       `json:"scannedAt"`
}

type ScanStat struct {
    Status   Status `json:"status"`
    Count    int    `json:"count"`
    ScanDate string `json:"scanDate"`
}

type ScanSummary struct {
    Total      int `json:"total"`
    Safe       int `json:"safe"`
    Suspicious int `json:"suspicious"`
    Malicious  int `json:"malicious"`
    Errors     int `json:"errors"`
}

// User is the identity attached to a request by the auth layer.
type User struct {
    ID    string `json:"id"`
    Email string `json:"email,omitempty"`
    Name  string `json:"name,omitempty"`
}
