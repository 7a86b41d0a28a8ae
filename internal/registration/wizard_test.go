// internal/registration/wizard_test.go
package registration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapmusicgroup/sap-backend/internal/agreement"
	"github.com/sapmusicgroup/sap-backend/internal/gateway"
	"github.com/sapmusicgroup/sap-backend/internal/models"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeSubmitter struct {
	mu         sync.Mutex
	addErr     error
	songErr    error
	added      []gateway.ManagedWriterInput
	registered []gateway.Song
}

func (f *fakeSubmitter) AddManagedWriter(_ context.Context, in gateway.ManagedWriterInput) (*gateway.ManagedWriter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, in)
	if f.addErr != nil {
		return nil, f.addErr
	}
	return &gateway.ManagedWriter{ID: fmt.Sprintf("mw-%d", len(f.added)), Name: in.Name}, nil
}

func (f *fakeSubmitter) RegisterSong(_ context.Context, s gateway.Song) (gateway.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.songErr != nil {
		return gateway.Song{}, f.songErr
	}
	s.ID = "song-1"
	f.registered = append(f.registered, s)
	return s, nil
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newWizard() *Wizard {
	return New(gateway.User{ID: "u1", Name: "Ann"}, agreement.DefaultTemplate,
		WithClock(func() time.Time { return fixedNow }), WithLogger(quietLogger()))
}

func completeWriter(w gateway.Writer) gateway.Writer {
	w.Name = "Ann Writer"
	w.Role = []string{"Composer"}
	w.DOB = "1990-01-01"
	w.Society = "ASCAP"
	w.IPI = "123456789"
	w.Agreed = true
	return w
}

// readyWizard is on the splits step with one complete writer, a signature
// and agreed terms.
func readyWizard(t *testing.T) *Wizard {
	t.Helper()
	w := newWizard()
	require.NoError(t, w.SetDetail(FieldTitle, "My Song"))
	require.NoError(t, w.SetDetail(FieldArtist, "Me"))
	require.NoError(t, w.Next())
	_, err := w.UpdateWriter(completeWriter(w.Writers()[0]))
	require.NoError(t, err)
	w.SetSignature("data:image/png;base64,AAA", models.SignatureTypeDraw)
	w.SetAgreed(true)
	return w
}

func TestDetailValidation(t *testing.T) {
	cases := []struct {
		field, value, want string
	}{
		{FieldTitle, "   ", "This field is required."},
		{FieldTitle, "Song", ""},
		{FieldArtist, "", "This field is required."},
		{FieldArtworkURL, "", ""},
		{FieldArtworkURL, "https://open.spotify.com/track/abc", ""},
		{FieldArtworkURL, "not a url", "Please enter a valid URL."},
		{FieldDuration, "3:45", ""},
		{FieldDuration, "03:45", ""},
		{FieldDuration, "13:99", ""},
		{FieldDuration, "345", "Format must be mm:ss."},
		{FieldDuration, "3:4", "Format must be mm:ss."},
		{FieldDuration, "123:45", "Format must be mm:ss."},
		{FieldISRC, "USABC1234567", ""},
		{FieldISRC, "usabc1234567", ""},
		{FieldISRC, "US-ABC-12-34567", "Invalid ISRC format."},
		{FieldUPC, "123456789012", ""},
		{FieldUPC, "1234567890123", ""},
		{FieldUPC, "12345678901", "UPC must be 12-13 digits."},
		{FieldAlbum, "", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetailError(tc.field, tc.value), "%s=%q", tc.field, tc.value)
	}
}

func TestWriterValidation(t *testing.T) {
	base := completeWriter(gateway.Writer{ID: "w"})
	assert.Empty(t, ValidateWriter(base, fixedNow))

	eight := base
	eight.IPI = "12345678"
	assert.Equal(t, map[string]string{FieldWriterIPI: "IPI must be 9 digits."}, ValidateWriter(eight, fixedNow))

	none := gateway.Writer{ID: "w"}
	errs := ValidateWriter(none, fixedNow)
	assert.Equal(t, "Writer name is required.", errs[FieldWriterName])
	assert.Equal(t, "At least one role is required.", errs[FieldWriterRole])
	assert.Equal(t, "Date of birth is required.", errs[FieldWriterDOB])
	assert.Equal(t, "Society is required.", errs[FieldWriterSociety])
	assert.Equal(t, "IPI number is required.", errs[FieldWriterIPI])

	future := base
	future.DOB = "2030-01-01"
	assert.Equal(t, "Date of birth must be in the past.", ValidateWriter(future, fixedNow)[FieldWriterDOB])
}

func TestNextBlocksOnInvalidDetails(t *testing.T) {
	w := newWizard()
	require.NoError(t, w.SetDetail(FieldTitle, "Song"))
	require.NoError(t, w.SetDetail(FieldDuration, "345"))

	assert.ErrorIs(t, w.Next(), ErrInvalidForm)
	assert.Equal(t, StepDetails, w.Step())
	errs := w.Errors()
	assert.Equal(t, "This field is required.", errs.Details[FieldArtist])
	assert.Equal(t, "Format must be mm:ss.", errs.Details[FieldDuration])
	assert.True(t, w.Touched(FieldArtist))
	assert.True(t, w.Touched(FieldUPC))
}

func TestNextCreatesFirstWriter(t *testing.T) {
	w := newWizard()
	require.NoError(t, w.SetDetail(FieldTitle, "Song"))
	require.NoError(t, w.SetDetail(FieldArtist, "Me"))
	require.NoError(t, w.Next())

	assert.Equal(t, StepSplits, w.Step())
	writers := w.Writers()
	require.Len(t, writers, 1)
	assert.Equal(t, 100.0, writers[0].Split)

	id, err := w.AddWriter()
	require.NoError(t, err)
	writers = w.Writers()
	require.Len(t, writers, 2)
	assert.Equal(t, id, writers[1].ID)
	assert.Equal(t, 0.0, writers[1].Split)

	require.NoError(t, w.Back())
	require.NoError(t, w.Next())
	assert.Len(t, w.Writers(), 2)
}

func TestSetSplitClamps(t *testing.T) {
	w := readyWizard(t)
	first := w.Writers()[0].ID
	second, err := w.AddWriter()
	require.NoError(t, err)

	got, err := w.SetSplit(second, 30)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got, "first writer still holds 100")

	_, err = w.SetSplit(first, 60)
	require.NoError(t, err)
	got, err = w.SetSplit(second, 70)
	require.NoError(t, err)
	assert.Equal(t, 40.0, got)

	got, err = w.SetSplit(second, -5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	_, err = w.SetSplit("missing", 10)
	assert.ErrorIs(t, err, ErrNoWriter)
}

func TestSplitSumNeverExceedsHundred(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("splits stay within [0,100] in total", prop.ForAll(
		func(edits []float64) bool {
			w := newWizard()
			_ = w.SetDetail(FieldTitle, "S")
			_ = w.SetDetail(FieldArtist, "A")
			if w.Next() != nil {
				return false
			}
			ids := []string{w.Writers()[0].ID}
			for i := 0; i < 3; i++ {
				id, _ := w.AddWriter()
				ids = append(ids, id)
			}
			for i, v := range edits {
				if _, err := w.SetSplit(ids[i%len(ids)], v); err != nil {
					return false
				}
				var total float64
				for _, wr := range w.Writers() {
					if wr.Split < 0 {
						return false
					}
					total += wr.Split
				}
				if total > 100+1e-9 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-50, 150)),
	))

	properties.TestingRun(t)
}

func TestSubmitReportsEveryFailure(t *testing.T) {
	w := newWizard()
	require.NoError(t, w.SetDetail(FieldTitle, "Song"))
	require.NoError(t, w.SetDetail(FieldArtist, "Me"))
	require.NoError(t, w.Next())
	id, err := w.AddWriter()
	require.NoError(t, err)

	sub := &fakeSubmitter{}
	assert.ErrorIs(t, w.Submit(context.Background(), sub), ErrInvalidForm)
	assert.Empty(t, sub.registered)
	assert.Empty(t, sub.added)

	errs := w.Errors()
	assert.Equal(t, "All writers must agree to their split.", errs.Global[GlobalAgreed])
	assert.Equal(t, "A signature is required to complete the agreement.", errs.Global[GlobalSignature])
	assert.Equal(t, "You must agree to the terms.", errs.Global[GlobalAgreement])
	assert.NotContains(t, errs.Global, GlobalSplitTotal)
	assert.Contains(t, errs.Writers, id)
	assert.True(t, w.Touched(id+"."+FieldWriterIPI))
}

func TestSubmitRequiresFullSplit(t *testing.T) {
	w := readyWizard(t)
	first := w.Writers()[0].ID
	_, err := w.SetSplit(first, 90)
	require.NoError(t, err)

	assert.ErrorIs(t, w.Submit(context.Background(), &fakeSubmitter{}), ErrInvalidForm)
	assert.Equal(t, "Total split must equal 100%.", w.Errors().Global[GlobalSplitTotal])
}

func TestSubmitIPIEightDigitsBlocks(t *testing.T) {
	w := readyWizard(t)
	wr := w.Writers()[0]
	wr.IPI = "12345678"
	_, err := w.UpdateWriter(wr)
	require.NoError(t, err)

	sub := &fakeSubmitter{}
	assert.ErrorIs(t, w.Submit(context.Background(), sub), ErrInvalidForm)
	assert.Equal(t, "IPI must be 9 digits.", w.Errors().Writers[wr.ID][FieldWriterIPI])
	assert.Empty(t, sub.registered)

	wr.IPI = "123456789"
	_, err = w.UpdateWriter(wr)
	require.NoError(t, err)
	require.NoError(t, w.Submit(context.Background(), sub))
	assert.Len(t, sub.registered, 1)
}

func TestSubmitBuildsSong(t *testing.T) {
	w := readyWizard(t)
	w.SetSubmitForSync(true)

	sub := &fakeSubmitter{}
	require.NoError(t, w.Submit(context.Background(), sub))

	assert.Equal(t, StepSuccess, w.Step())
	assert.True(t, w.Dashboard())
	require.Len(t, sub.registered, 1)
	s := sub.registered[0]
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, models.AgreementStatusPending, s.Status)
	assert.Equal(t, models.SyncStatusPending, s.SyncStatus)
	assert.Equal(t, "2024-06-15", s.RegistrationDate)
	assert.Equal(t, "https://picsum.photos/seed/My Song/200/200", s.ArtworkURL)
	assert.Contains(t, s.AgreementText, "6/15/2024")

	assert.ErrorIs(t, w.Back(), ErrWrongStep)
	assert.ErrorIs(t, w.Submit(context.Background(), sub), ErrWrongStep)
}

func TestSubmitLinksNewWriters(t *testing.T) {
	w := readyWizard(t)
	sub := &fakeSubmitter{}
	require.NoError(t, w.Submit(context.Background(), sub))

	require.Len(t, sub.added, 1)
	assert.Equal(t, "123456789", sub.added[0].IPI)
	assert.Equal(t, "mw-1", sub.registered[0].Writers[0].WriterID)
}

func TestSubmitSkipsLinkedWriters(t *testing.T) {
	w := readyWizard(t)
	require.NoError(t, w.LinkWriter(w.Writers()[0].ID, gateway.ManagedWriter{
		ID: "existing", Name: "Ann Writer", DOB: "1990-01-01", Society: "BMI", IPI: "987654321",
	}))

	sub := &fakeSubmitter{}
	require.NoError(t, w.Submit(context.Background(), sub))
	assert.Empty(t, sub.added)
	assert.Equal(t, "existing", sub.registered[0].Writers[0].WriterID)
	assert.Equal(t, "BMI", sub.registered[0].Writers[0].Society)
}

func TestSubmitToleratesLibraryFailure(t *testing.T) {
	w := readyWizard(t)
	sub := &fakeSubmitter{addErr: errors.New("insert failed")}
	require.NoError(t, w.Submit(context.Background(), sub))

	require.Len(t, sub.registered, 1)
	assert.Empty(t, sub.registered[0].Writers[0].WriterID)
}

func TestSubmitFailureTranslatesError(t *testing.T) {
	w := readyWizard(t)
	sub := &fakeSubmitter{songErr: &gateway.DBError{Message: `new row for relation "songs" violates check constraint "songs_duration_format_chk"`}}

	err := w.Submit(context.Background(), sub)
	require.Error(t, err)
	assert.Equal(t, StepSplits, w.Step())
	assert.Equal(t,
		"Submission failed: The 'Duration' format is invalid. Please use mm:ss (e.g., 03:45) or leave it blank.",
		w.Errors().Global[GlobalAgreement])
}

func TestTranslateSubmitError(t *testing.T) {
	assert.Equal(t, "An unexpected submission error occurred. Please try again.", TranslateSubmitError(nil))
	assert.Equal(t, "Submission failed: boom", TranslateSubmitError(errors.New("boom")))

	full := &gateway.DBError{Message: "duplicate key", Details: "Key (id) exists", Hint: "use another", Code: "23505"}
	assert.Equal(t,
		"Submission failed with a database error:\n\nMessage: duplicate key\nDetails: Key (id) exists\nHint: use another\nCode: 23505",
		TranslateSubmitError(fmt.Errorf("insert: %w", full)))

	bare := &gateway.DBError{Message: "oops"}
	assert.Equal(t, "Submission failed with a database error:\n\nMessage: oops", TranslateSubmitError(bare))
}

type staticSummarizer string

func (s staticSummarizer) Summarize(context.Context, string) (string, error) { return string(s), nil }

func TestSummarize(t *testing.T) {
	w := newWizard()
	got, err := w.Summarize(context.Background(), staticSummarizer("short version"))
	require.NoError(t, err)
	assert.Equal(t, "short version", got)
	assert.Equal(t, "short version", w.Summary())
}
