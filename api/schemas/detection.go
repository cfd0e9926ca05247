package schemas

import "time"

// -- Detection Report Schemas --

// DetectionStatus is the confidence the detector attaches to its verdict.
type DetectionStatus string

const (
	// DetectionStatusVerified means the detector confirmed exploitation,
	// e.g. through an out-of-band callback or an in-band payload echo.
	DetectionStatusVerified DetectionStatus = "VULNERABILITY_VERIFIED"
	// DetectionStatusPresent means the vulnerability is present based on
	// observed evidence, without active exploitation.
	DetectionStatusPresent DetectionStatus = "VULNERABILITY_PRESENT"
	// DetectionStatusSafe means the target was checked and is not affected.
	DetectionStatusSafe DetectionStatus = "SAFE"
)

// Severity grades the impact of a reported vulnerability.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityMinimal  Severity = "MINIMAL"
)

// VulnerabilityID is the namespaced identifier of a vulnerability.
type VulnerabilityID struct {
	Publisher string `json:"publisher"`
	Value     string `json:"value"`
}

// Vulnerability carries the full description of one reported vulnerability.
type Vulnerability struct {
	ID             VulnerabilityID `json:"main_id"`
	Severity       Severity        `json:"severity"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Recommendation string          `json:"recommendation,omitempty"`
}

// DetectionReport is the result of running one detector against one network
// service of a target.
type DetectionReport struct {
	TargetInfo    TargetInfo      `json:"target_info"`
	Service       NetworkService  `json:"network_service"`
	Timestamp     time.Time       `json:"detection_timestamp"`
	Status        DetectionStatus `json:"detection_status"`
	Vulnerability *Vulnerability  `json:"vulnerability,omitempty"`
}
