package model

// ImportProfile names the detected broker export shape.
type ImportProfile string

const (
	// ProfileDescription is the Symbol/Description/Price/Time shape where
	// legs are embedded in a free-text description.
	ProfileDescription ImportProfile = "description"

	// ProfileStructured is the shape with explicit Action/Quantity/Price/
	// Strike Price/Expiration Date/Type columns.
	ProfileStructured ImportProfile = "structured"
)

// ImportReport summarizes one broker-file import. Warnings are non-fatal:
// the offending row or leg was skipped and the rest of the file processed.
type ImportReport struct {
	Profile  ImportProfile `json:"profile"`
	Imported int           `json:"imported"`
	Closed   int           `json:"closed"`
	Open     int           `json:"open"`
	Warnings []string      `json:"warnings,omitempty"`
}
