// internal/registration/wizard.go
//
// Package registration implements the song registration form: song details,
// writer splits with signature and agreement, then a terminal success step.
package registration

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sapmusicgroup/sap-backend/internal/agreement"
	"github.com/sapmusicgroup/sap-backend/internal/gateway"
	"github.com/sapmusicgroup/sap-backend/internal/models"
)

type Step int

const (
	StepDetails Step = iota + 1
	StepSplits
	StepSuccess
)

func (s Step) String() string {
	switch s {
	case StepDetails:
		return "details"
	case StepSplits:
		return "splits"
	case StepSuccess:
		return "success"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

var (
	ErrInvalidForm = errors.New("registration: form has errors")
	ErrWrongStep   = errors.New("registration: not allowed at this step")
	ErrSubmitting  = errors.New("registration: submission in progress")
	ErrNoWriter    = errors.New("registration: writer not found")
)

// Submitter persists what the form produces.
type Submitter interface {
	AddManagedWriter(ctx context.Context, in gateway.ManagedWriterInput) (*gateway.ManagedWriter, error)
	RegisterSong(ctx context.Context, song gateway.Song) (gateway.Song, error)
}

// Summarizer produces a plain-language summary of agreement text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Errors holds the current validation messages.
type Errors struct {
	Details map[string]string
	Writers map[string]map[string]string
	Global  map[string]string
}

func (e Errors) Empty() bool {
	if len(e.Details) > 0 || len(e.Global) > 0 {
		return false
	}
	for _, w := range e.Writers {
		if len(w) > 0 {
			return false
		}
	}
	return true
}

type Option func(*Wizard)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(w *Wizard) { w.log = l }
}

// Wizard is the state of one registration. Methods may be called from
// several goroutines; Submit releases the lock while it waits on the
// Submitter.
type Wizard struct {
	mu sync.Mutex

	user             gateway.User
	step             Step
	details          Details
	writers          []gateway.Writer
	signatureData    string
	signatureType    models.SignatureType
	hasAgreed        bool
	submitForSync    bool
	registrationDate string
	agreementText    string
	summary          string

	errs       Errors
	touched    map[string]bool
	submitting bool
	seq        int

	now func() time.Time
	log logrus.FieldLogger
}

// New starts a registration for user. The registration date is fixed now
// and renders into template.
func New(user gateway.User, template string, opts ...Option) *Wizard {
	w := &Wizard{
		user:          user,
		step:          StepDetails,
		signatureType: models.SignatureTypeDraw,
		touched:       map[string]bool{},
		now:           time.Now,
		log:           logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.errs = Errors{Details: map[string]string{}, Writers: map[string]map[string]string{}, Global: map[string]string{}}
	w.registrationDate = models.Today(w.now().UTC())
	w.agreementText = agreement.Render(template, w.registrationDate)
	return w
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) RegistrationDate() string { return w.registrationDate }

func (w *Wizard) AgreementText() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.agreementText
}

func (w *Wizard) Details() Details {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.details
}

// Writers returns a copy of the split entries.
func (w *Wizard) Writers() []gateway.Writer {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]gateway.Writer, len(w.writers))
	for i, wr := range w.writers {
		wr.Role = append([]string(nil), wr.Role...)
		out[i] = wr
	}
	return out
}

// Errors returns a copy of the current messages.
func (w *Wizard) Errors() Errors {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := Errors{Details: copyMap(w.errs.Details), Writers: map[string]map[string]string{}, Global: copyMap(w.errs.Global)}
	for id, m := range w.errs.Writers {
		out.Writers[id] = copyMap(m)
	}
	return out
}

// Touched reports whether a field has been visited. Song fields are keyed
// by name, writer fields by "<writer id>.<field>".
func (w *Wizard) Touched(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.touched[key]
}

// SetDetail edits a song field and revalidates it.
func (w *Wizard) SetDetail(field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepDetails {
		return ErrWrongStep
	}
	if !w.details.set(field, value) {
		return fmt.Errorf("registration: unknown field %q", field)
	}
	setOrClear(w.errs.Details, field, DetailError(field, value))
	return nil
}

// Blur marks a field touched and revalidates it.
func (w *Wizard) Blur(field string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touched[field] = true
	setOrClear(w.errs.Details, field, DetailError(field, w.details.get(field)))
}

// Next leaves the details step when every song field is valid. The first
// writer is created with the whole split.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepDetails {
		return ErrWrongStep
	}
	for _, f := range detailFields {
		w.touched[f] = true
	}
	w.errs.Details = ValidateDetails(w.details)
	if len(w.errs.Details) > 0 {
		return ErrInvalidForm
	}
	w.step = StepSplits
	if len(w.writers) == 0 {
		w.writers = append(w.writers, w.newWriter(100))
	}
	return nil
}

// Back returns to the details step. Writers are kept.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepSplits || w.submitting {
		return ErrWrongStep
	}
	w.step = StepDetails
	return nil
}

func (w *Wizard) newWriter(split float64) gateway.Writer {
	w.seq++
	return gateway.Writer{
		ID:    fmt.Sprintf("writer-%d-%d", w.now().UnixMilli(), w.seq),
		Role:  []string{},
		Split: split,
	}
}

// AddWriter appends an empty writer with no split and returns its id.
func (w *Wizard) AddWriter() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepSplits {
		return "", ErrWrongStep
	}
	wr := w.newWriter(0)
	w.writers = append(w.writers, wr)
	return wr.ID, nil
}

// AddWriterFromLibrary appends a writer linked to a saved managed writer.
func (w *Wizard) AddWriterFromLibrary(mw gateway.ManagedWriter) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepSplits {
		return "", ErrWrongStep
	}
	wr := w.newWriter(0)
	link(&wr, mw)
	w.writers = append(w.writers, wr)
	return wr.ID, nil
}

// LinkWriter fills an existing entry from a saved managed writer.
func (w *Wizard) LinkWriter(id string, mw gateway.ManagedWriter) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.indexOf(id)
	if i < 0 {
		return ErrNoWriter
	}
	link(&w.writers[i], mw)
	w.validateWriter(w.writers[i])
	return nil
}

func link(wr *gateway.Writer, mw gateway.ManagedWriter) {
	wr.WriterID = mw.ID
	wr.Name = mw.Name
	wr.DOB = mw.DOB
	wr.Society = mw.Society
	wr.IPI = mw.IPI
}

func (w *Wizard) RemoveWriter(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.indexOf(id)
	if i < 0 {
		return ErrNoWriter
	}
	w.writers = append(w.writers[:i], w.writers[i+1:]...)
	delete(w.errs.Writers, id)
	return nil
}

// UpdateWriter replaces the entry with the same id. The split is clamped as
// in SetSplit and the writer's fields are revalidated.
func (w *Wizard) UpdateWriter(wr gateway.Writer) (gateway.Writer, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.indexOf(wr.ID)
	if i < 0 {
		return gateway.Writer{}, ErrNoWriter
	}
	wr.Split = w.clamp(wr.ID, wr.Split)
	w.writers[i] = wr
	w.validateWriter(wr)
	return wr, nil
}

// SetSplit sets a writer's split clamped to [0, 100 - sum of the others]
// and returns the stored value.
func (w *Wizard) SetSplit(id string, split float64) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.indexOf(id)
	if i < 0 {
		return 0, ErrNoWriter
	}
	w.writers[i].Split = w.clamp(id, split)
	return w.writers[i].Split, nil
}

func (w *Wizard) clamp(id string, split float64) float64 {
	var others float64
	for _, wr := range w.writers {
		if wr.ID != id {
			others += wr.Split
		}
	}
	if math.IsNaN(split) {
		return 0
	}
	return math.Max(0, math.Min(split, 100-others))
}

// BlurWriter marks a writer field touched and revalidates it.
func (w *Wizard) BlurWriter(id, field string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touched[id+"."+field] = true
	if i := w.indexOf(id); i >= 0 {
		w.setWriterError(id, field, WriterError(w.writers[i], field, w.now()))
	}
}

func (w *Wizard) validateWriter(wr gateway.Writer) {
	now := w.now()
	for _, f := range writerFields {
		w.setWriterError(wr.ID, f, WriterError(wr, f, now))
	}
}

func (w *Wizard) setWriterError(id, field, msg string) {
	m := w.errs.Writers[id]
	if m == nil {
		m = map[string]string{}
		w.errs.Writers[id] = m
	}
	setOrClear(m, field, msg)
	if len(m) == 0 {
		delete(w.errs.Writers, id)
	}
}

func (w *Wizard) indexOf(id string) int {
	for i, wr := range w.writers {
		if wr.ID == id {
			return i
		}
	}
	return -1
}

func (w *Wizard) SetSignature(data string, typ models.SignatureType) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.signatureData = data
	w.signatureType = typ
}

func (w *Wizard) SetAgreed(agreed bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hasAgreed = agreed
}

// SetSubmitForSync offers the song for sync licensing on submission.
func (w *Wizard) SetSubmitForSync(v bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitForSync = v
}

// Summarize asks s for a summary of the agreement and keeps it.
func (w *Wizard) Summarize(ctx context.Context, s Summarizer) (string, error) {
	summary, err := s.Summarize(ctx, w.AgreementText())
	if err != nil {
		return "", err
	}
	w.mu.Lock()
	w.summary = summary
	w.mu.Unlock()
	return summary, nil
}

func (w *Wizard) Summary() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.summary
}

// validateAll recomputes every message and touches every field.
func (w *Wizard) validateAll() bool {
	now := w.now()
	errs := Errors{
		Details: ValidateDetails(w.details),
		Writers: map[string]map[string]string{},
		Global:  map[string]string{},
	}
	for _, wr := range w.writers {
		if m := ValidateWriter(wr, now); len(m) > 0 {
			errs.Writers[wr.ID] = m
		}
	}

	var total float64
	allAgreed := len(w.writers) > 0
	for _, wr := range w.writers {
		total += wr.Split
		allAgreed = allAgreed && wr.Agreed
	}
	if math.Abs(total-100) > 1e-9 {
		errs.Global[GlobalSplitTotal] = "Total split must equal 100%."
	}
	if !allAgreed {
		errs.Global[GlobalAgreed] = "All writers must agree to their split."
	}
	if w.signatureData == "" {
		errs.Global[GlobalSignature] = "A signature is required to complete the agreement."
	}
	if !w.hasAgreed {
		errs.Global[GlobalAgreement] = "You must agree to the terms."
	}
	w.errs = errs

	for _, f := range detailFields {
		w.touched[f] = true
	}
	for _, wr := range w.writers {
		for _, f := range writerFields {
			w.touched[wr.ID+"."+f] = true
		}
	}
	return errs.Empty()
}

// Submit validates the whole form, saves new writers to the library, then
// registers the song. On failure the translated message is stored under
// GlobalAgreement and the error is returned; the form stays on the splits
// step so the user can retry.
func (w *Wizard) Submit(ctx context.Context, sub Submitter) error {
	w.mu.Lock()
	if w.step != StepSplits {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if w.submitting {
		w.mu.Unlock()
		return ErrSubmitting
	}
	if !w.validateAll() {
		w.mu.Unlock()
		return ErrInvalidForm
	}
	w.submitting = true
	writers := make([]gateway.Writer, len(w.writers))
	copy(writers, w.writers)
	details := w.details
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()

	writers = w.enrichWriters(ctx, sub, writers)

	w.mu.Lock()
	song := gateway.Song{
		UserID:           w.user.ID,
		Title:            details.Title,
		Artist:           details.Artist,
		ArtworkURL:       details.ArtworkURL,
		RegistrationDate: w.registrationDate,
		Writers:          writers,
		SignatureData:    w.signatureData,
		SignatureType:    w.signatureType,
		Status:           models.AgreementStatusPending,
		SyncStatus:       models.SyncStatusNone,
		AgreementText:    w.agreementText,
		Duration:         details.Duration,
		ISRC:             details.ISRC,
		UPC:              details.UPC,
	}
	if song.ArtworkURL == "" {
		song.ArtworkURL = fmt.Sprintf("https://picsum.photos/seed/%s/200/200", details.Title)
	}
	if w.submitForSync {
		song.SyncStatus = models.SyncStatusPending
	}
	w.mu.Unlock()

	_, err := sub.RegisterSong(ctx, song)

	w.mu.Lock()
	defer w.mu.Unlock()
	// Keep library links so a retry does not save the same writers again.
	w.writers = writers
	if err != nil {
		w.errs.Global[GlobalAgreement] = TranslateSubmitError(err)
		return err
	}
	w.step = StepSuccess
	return nil
}

// enrichWriters saves every complete, unlinked writer to the library and
// links the entry to it. A failed save leaves that entry unlinked.
func (w *Wizard) enrichWriters(ctx context.Context, sub Submitter, writers []gateway.Writer) []gateway.Writer {
	var g errgroup.Group
	for i := range writers {
		wr := writers[i]
		if wr.WriterID != "" || wr.Name == "" || wr.DOB == "" || wr.Society == "" || wr.IPI == "" {
			continue
		}
		g.Go(func() error {
			mw, err := sub.AddManagedWriter(ctx, gateway.ManagedWriterInput{
				Name:    wr.Name,
				DOB:     wr.DOB,
				Society: wr.Society,
				IPI:     wr.IPI,
			})
			if err != nil {
				w.log.WithError(err).WithField("writer", wr.Name).Warn("Failed to save writer to library")
				return nil
			}
			if mw != nil {
				writers[i].WriterID = mw.ID
			}
			return nil
		})
	}
	_ = g.Wait()
	return writers
}

// Dashboard reports whether the form is finished and the caller may leave
// for the dashboard.
func (w *Wizard) Dashboard() bool {
	return w.Step() == StepSuccess
}

// TranslateSubmitError turns a registration failure into the message shown
// to the user.
func TranslateSubmitError(err error) string {
	if err == nil {
		return "An unexpected submission error occurred. Please try again."
	}
	var dbErr *gateway.DBError
	if !errors.As(err, &dbErr) {
		return "Submission failed: " + err.Error()
	}
	if strings.Contains(dbErr.Message, models.DurationCheckConstraint) {
		return "Submission failed: The 'Duration' format is invalid. Please use mm:ss (e.g., 03:45) or leave it blank."
	}
	var b strings.Builder
	b.WriteString("Submission failed with a database error:\n")
	b.WriteString("\nMessage: " + dbErr.Message)
	if dbErr.Details != "" {
		b.WriteString("\nDetails: " + dbErr.Details)
	}
	if dbErr.Hint != "" {
		b.WriteString("\nHint: " + dbErr.Hint)
	}
	if dbErr.Code != "" {
		b.WriteString("\nCode: " + dbErr.Code)
	}
	return b.String()
}

func setOrClear(m map[string]string, key, msg string) {
	if msg == "" {
		delete(m, key)
		return
	}
	m[key] = msg
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
