// internal/registration/validate.go
package registration

import (
	"regexp"
	"strings"
	"time"

	"github.com/sapmusicgroup/sap-backend/internal/gateway"
)

// Form fields with validation rules.
const (
	FieldTitle      = "title"
	FieldArtist     = "artist"
	FieldAlbum      = "album"
	FieldArtworkURL = "artworkUrl"
	FieldDuration   = "duration"
	FieldISRC       = "isrc"
	FieldUPC        = "upc"

	FieldWriterName    = "name"
	FieldWriterRole    = "role"
	FieldWriterDOB     = "dob"
	FieldWriterSociety = "society"
	FieldWriterIPI     = "ipi"
)

// Keys of form-wide errors.
const (
	GlobalSplitTotal = "splitTotal"
	GlobalAgreed     = "allWritersAgreed"
	GlobalSignature  = "signature"
	GlobalAgreement  = "agreement"
)

var (
	urlPattern      = regexp.MustCompile(`^(https?://)?([\da-z.-]+)\.([a-z.]{2,6})([/\w .-]*)*/?$`)
	durationPattern = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
	isrcPattern     = regexp.MustCompile(`(?i)^[A-Z]{2}[A-Z0-9]{3}\d{7}$`)
	upcPattern      = regexp.MustCompile(`^\d{12,13}$`)
	ipiPattern      = regexp.MustCompile(`^\d{9}$`)
)

var detailFields = []string{FieldTitle, FieldArtist, FieldAlbum, FieldArtworkURL, FieldDuration, FieldISRC, FieldUPC}

var writerFields = []string{FieldWriterName, FieldWriterRole, FieldWriterDOB, FieldWriterSociety, FieldWriterIPI}

// Details is step one of the form.
type Details struct {
	Title      string
	Artist     string
	Album      string
	ArtworkURL string
	Duration   string
	ISRC       string
	UPC        string
}

func (d Details) get(field string) string {
	switch field {
	case FieldTitle:
		return d.Title
	case FieldArtist:
		return d.Artist
	case FieldAlbum:
		return d.Album
	case FieldArtworkURL:
		return d.ArtworkURL
	case FieldDuration:
		return d.Duration
	case FieldISRC:
		return d.ISRC
	case FieldUPC:
		return d.UPC
	}
	return ""
}

func (d *Details) set(field, value string) bool {
	switch field {
	case FieldTitle:
		d.Title = value
	case FieldArtist:
		d.Artist = value
	case FieldAlbum:
		d.Album = value
	case FieldArtworkURL:
		d.ArtworkURL = value
	case FieldDuration:
		d.Duration = value
	case FieldISRC:
		d.ISRC = value
	case FieldUPC:
		d.UPC = value
	default:
		return false
	}
	return true
}

// DetailError validates one song field. Optional fields are only checked
// when set. The empty string means valid.
func DetailError(field, value string) string {
	switch field {
	case FieldTitle, FieldArtist:
		if strings.TrimSpace(value) == "" {
			return "This field is required."
		}
	case FieldArtworkURL:
		if value != "" && !urlPattern.MatchString(value) {
			return "Please enter a valid URL."
		}
	case FieldDuration:
		if value != "" && !durationPattern.MatchString(value) {
			return "Format must be mm:ss."
		}
	case FieldISRC:
		if value != "" && !isrcPattern.MatchString(value) {
			return "Invalid ISRC format."
		}
	case FieldUPC:
		if value != "" && !upcPattern.MatchString(value) {
			return "UPC must be 12-13 digits."
		}
	}
	return ""
}

// WriterError validates one writer field at time now.
func WriterError(w gateway.Writer, field string, now time.Time) string {
	switch field {
	case FieldWriterName:
		if strings.TrimSpace(w.Name) == "" {
			return "Writer name is required."
		}
	case FieldWriterRole:
		if len(w.Role) == 0 {
			return "At least one role is required."
		}
	case FieldWriterDOB:
		if w.DOB == "" {
			return "Date of birth is required."
		}
		// A date that does not parse is not compared.
		if dob, err := time.Parse("2006-01-02", w.DOB); err == nil && !dob.Before(now) {
			return "Date of birth must be in the past."
		}
	case FieldWriterSociety:
		if w.Society == "" {
			return "Society is required."
		}
	case FieldWriterIPI:
		if w.IPI == "" {
			return "IPI number is required."
		}
		if !ipiPattern.MatchString(w.IPI) {
			return "IPI must be 9 digits."
		}
	}
	return ""
}

// ValidateDetails returns the error of every invalid song field.
func ValidateDetails(d Details) map[string]string {
	errs := map[string]string{}
	for _, f := range detailFields {
		if msg := DetailError(f, d.get(f)); msg != "" {
			errs[f] = msg
		}
	}
	return errs
}

// ValidateWriter returns the error of every invalid field of w.
func ValidateWriter(w gateway.Writer, now time.Time) map[string]string {
	errs := map[string]string{}
	for _, f := range writerFields {
		if msg := WriterError(w, f, now); msg != "" {
			errs[f] = msg
		}
	}
	return errs
}
