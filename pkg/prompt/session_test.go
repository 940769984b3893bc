package prompt_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/prompt"
	"github.com/goliatone/go-formstate/pkg/rules"
	"github.com/goliatone/go-formstate/pkg/servererrors"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
	err          error
}

func (s *stubDriver) Input(_ context.Context, _ prompt.InputConfig) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ prompt.InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ prompt.ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ prompt.SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ prompt.SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ prompt.TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func signupForm() (*form.Form, []model.Field) {
	fields := []model.Field{
		{Name: "email", Label: "Email", Type: model.FieldTypeString, Required: true},
		{Name: "age", Type: model.FieldTypeInteger},
	}
	f := form.New(
		map[string]any{"email": "", "age": nil},
		map[string][]rules.Rule{
			"email": {rules.Required(), rules.Email()},
			"age":   {rules.Number(), rules.Min(18)},
		},
		form.WithFieldOrder("email", "age"),
	)
	return f, fields
}

func TestSessionRepromptsUntilValid(t *testing.T) {
	f, fields := signupForm()
	driver := &stubDriver{inputs: []string{"", "bob@example.com", "abc", "21"}}

	var submitted map[string]any
	session := prompt.NewSession(f,
		prompt.WithDriver(driver),
		prompt.WithFields(fields),
		prompt.WithTheme(prompt.PlainTheme()),
	)
	got, err := session.Run(context.Background(), func(_ context.Context, values map[string]any) error {
		submitted = values
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := map[string]any{"email": "bob@example.com", "age": int64(21)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, submitted); diff != "" {
		t.Fatalf("submitted mismatch (-want +got):\n%s", diff)
	}

	wantInfo := []string{
		"Email: This field is required",
		"age: Must be a number",
		"Submitted.",
	}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if f.Submitting() {
		t.Fatal("expected submitting to be cleared")
	}
}

func TestSessionChoicesAndBooleans(t *testing.T) {
	fields := []model.Field{
		{Name: "plan", Type: model.FieldTypeString, Enum: []any{"free", "pro"}},
		{Name: "topics", Type: model.FieldTypeArray, Enum: []any{"go", "rust", "zig"}},
		{Name: "newsletter", Type: model.FieldTypeBoolean},
		{Name: "bio", Type: model.FieldTypeString, Metadata: map[string]string{"widget": "textarea"}},
		{Name: "secret", Type: model.FieldTypeString, Format: "password"},
	}
	f := form.New(
		map[string]any{"plan": "free"},
		map[string][]rules.Rule{"bio": {rules.NoMarkup()}},
		form.WithFieldOrder("plan", "topics", "newsletter", "bio", "secret"),
	)
	driver := &stubDriver{
		selectIdx: []int{1},
		multiIdx:  [][]int{{0, 2}},
		confirm:   []bool{true},
		textAreas: []string{"<b>hi</b>", "hello"},
		passwords: []string{"hunter2"},
	}

	got, err := prompt.NewSession(f,
		prompt.WithDriver(driver),
		prompt.WithFields(fields),
		prompt.WithTheme(prompt.PlainTheme()),
	).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := map[string]any{
		"plan":       "pro",
		"topics":     []any{"go", "zig"},
		"newsletter": true,
		"bio":        "hello",
		"secret":     "hunter2",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bio: Must not contain markup", "Submitted."}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionGivesUpAfterMaxAttempts(t *testing.T) {
	f, fields := signupForm()
	driver := &stubDriver{inputs: []string{"", "nope"}}

	called := false
	_, err := prompt.NewSession(f,
		prompt.WithDriver(driver),
		prompt.WithFields(fields),
		prompt.WithMaxAttempts(2),
	).Run(context.Background(), func(context.Context, map[string]any) error {
		called = true
		return nil
	})
	if !errors.Is(err, prompt.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if called {
		t.Fatal("submit handler must not run")
	}
}

func TestSessionAbortStopsRun(t *testing.T) {
	f, fields := signupForm()
	driver := &stubDriver{err: prompt.ErrAborted}

	_, err := prompt.NewSession(f, prompt.WithDriver(driver), prompt.WithFields(fields)).Run(context.Background(), nil)
	if !errors.Is(err, prompt.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestSessionReturnsSubmitError(t *testing.T) {
	f, fields := signupForm()
	driver := &stubDriver{inputs: []string{"bob@example.com", ""}}
	boom := errors.New("backend down")

	_, err := prompt.NewSession(f, prompt.WithDriver(driver), prompt.WithFields(fields)).Run(context.Background(), func(context.Context, map[string]any) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected submit error, got %v", err)
	}
	if f.Submitting() {
		t.Fatal("expected submitting to be cleared")
	}
}

func TestSessionReasksFieldsRejectedOnSubmit(t *testing.T) {
	var checks atomic.Int32
	taken := rules.Custom(func(_ context.Context, value any) error {
		if value == "alice" && checks.Add(1) > 1 {
			return rules.Fail("Handle is taken")
		}
		return nil
	})
	f := form.New(map[string]any{"handle": ""}, map[string][]rules.Rule{"handle": {rules.Required(), taken}})
	driver := &stubDriver{inputs: []string{"alice", "alice_2"}}

	got, err := prompt.NewSession(f,
		prompt.WithDriver(driver),
		prompt.WithTheme(prompt.PlainTheme()),
	).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"handle": "alice_2"}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"handle: Handle is taken", "Submitted."}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionReasksFieldsRejectedByServer(t *testing.T) {
	f, fields := signupForm()
	driver := &stubDriver{inputs: []string{"taken@example.com", "30", "free@example.com"}}

	calls := 0
	got, err := prompt.NewSession(f,
		prompt.WithDriver(driver),
		prompt.WithFields(fields),
		prompt.WithTheme(prompt.PlainTheme()),
	).Run(context.Background(), func(_ context.Context, values map[string]any) error {
		calls++
		if values["email"] == "taken@example.com" {
			if _, err := servererrors.ApplyJSON(f, []byte(`{"errors":[{"path":"/body/email","message":"Email already registered"}]}`)); err != nil {
				return err
			}
			return prompt.ErrRejected
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected two submit calls, got %d", calls)
	}

	want := map[string]any{"email": "free@example.com", "age": int64(30)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	wantInfo := []string{"Email: Email already registered", "Submitted."}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionRejectionWithoutFieldErrorsStops(t *testing.T) {
	f, fields := signupForm()
	driver := &stubDriver{inputs: []string{"bob@example.com", ""}}

	_, err := prompt.NewSession(f, prompt.WithDriver(driver), prompt.WithFields(fields)).Run(context.Background(), func(context.Context, map[string]any) error {
		return prompt.ErrRejected
	})
	if !errors.Is(err, prompt.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestSessionClearsServerErrorOnFieldsWithoutRules(t *testing.T) {
	f := form.New(
		map[string]any{"email": "", "nickname": ""},
		map[string][]rules.Rule{"email": {rules.Required()}},
		form.WithFieldOrder("email", "nickname"),
	)
	driver := &stubDriver{inputs: []string{"ada@example.com", "root", "ada", "ada@example.org"}}

	calls := 0
	got, err := prompt.NewSession(f,
		prompt.WithDriver(driver),
		prompt.WithTheme(prompt.PlainTheme()),
	).Run(context.Background(), func(_ context.Context, values map[string]any) error {
		calls++
		switch {
		case values["nickname"] == "root":
			f.SetFieldError("nickname", "Reserved nickname")
			return prompt.ErrRejected
		case values["email"] == "ada@example.com":
			f.SetFieldError("email", "Email already registered")
			return prompt.ErrRejected
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected three submit calls, got %d", calls)
	}

	want := map[string]any{"email": "ada@example.org", "nickname": "ada"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	wantInfo := []string{
		"nickname: Reserved nickname",
		"email: Email already registered",
		"Submitted.",
	}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}
