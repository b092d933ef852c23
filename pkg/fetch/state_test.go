package fetch

import (
	"errors"
	"testing"
)

func TestState_ZeroValueIsNotFetching(t *testing.T) {
	var s State[string]
	if s.Status() != NotFetching {
		t.Errorf("Status() = %v, want %v", s.Status(), NotFetching)
	}
	if _, ok := s.Payload(); ok {
		t.Error("Payload() on zero state should not be available")
	}
	if s.Err() != nil {
		t.Errorf("Err() = %v, want nil", s.Err())
	}
}

func TestState_Apply(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name        string
		actions     []Action[int]
		wantStatus  Status
		wantSeq     uint64
		wantPayload int
		wantOK      bool
		wantErr     error
	}{
		{
			name:       "start",
			actions:    []Action[int]{Start[int](1)},
			wantStatus: Fetching,
			wantSeq:    1,
		},
		{
			name:        "start then succeed",
			actions:     []Action[int]{Start[int](1), Succeed(1, 42)},
			wantStatus:  Fetched,
			wantSeq:     1,
			wantPayload: 42,
			wantOK:      true,
		},
		{
			name:       "start then fail",
			actions:    []Action[int]{Start[int](1), Fail[int](1, errBoom)},
			wantStatus: Failed,
			wantSeq:    1,
			wantErr:    errBoom,
		},
		{
			name:       "new request supersedes fetched payload",
			actions:    []Action[int]{Start[int](1), Succeed(1, 42), Start[int](2)},
			wantStatus: Fetching,
			wantSeq:    2,
		},
		{
			name:        "success after failure drops the error",
			actions:     []Action[int]{Fail[int](1, errBoom), Start[int](2), Succeed(2, 7)},
			wantStatus:  Fetched,
			wantSeq:     2,
			wantPayload: 7,
			wantOK:      true,
		},
		{
			name:       "reset",
			actions:    []Action[int]{Start[int](1), Fail[int](1, errBoom), Reset[int]()},
			wantStatus: NotFetching,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Idle[int]()
			for _, a := range tt.actions {
				s = s.Apply(a)
			}

			if s.Status() != tt.wantStatus {
				t.Errorf("Status() = %v, want %v", s.Status(), tt.wantStatus)
			}
			if s.Seq() != tt.wantSeq {
				t.Errorf("Seq() = %d, want %d", s.Seq(), tt.wantSeq)
			}
			payload, ok := s.Payload()
			if ok != tt.wantOK || payload != tt.wantPayload {
				t.Errorf("Payload() = (%d, %v), want (%d, %v)", payload, ok, tt.wantPayload, tt.wantOK)
			}
			if !errors.Is(s.Err(), tt.wantErr) || (tt.wantErr == nil && s.Err() != nil) {
				t.Errorf("Err() = %v, want %v", s.Err(), tt.wantErr)
			}
		})
	}
}

func TestState_ApplyIsIdempotent(t *testing.T) {
	s := Idle[string]().Apply(Start[string](3))
	again := s.Apply(Start[string](3))

	if again.Status() != s.Status() || again.Seq() != s.Seq() {
		t.Errorf("applying Start twice changed state: %v/%d -> %v/%d",
			s.Status(), s.Seq(), again.Status(), again.Seq())
	}

	done := again.Apply(Succeed(3, "page"))
	doneAgain := done.Apply(Succeed(3, "page"))
	p1, _ := done.Payload()
	p2, _ := doneAgain.Payload()
	if p1 != p2 || done.Status() != doneAgain.Status() {
		t.Errorf("applying Succeed twice changed state: %q -> %q", p1, p2)
	}
}

func TestState_LastSurvivesFailure(t *testing.T) {
	s := Idle[string]().
		Apply(Start[string](1)).
		Apply(Succeed(1, "first")).
		Apply(Start[string](2)).
		Apply(Fail[string](2, errors.New("down")))

	if _, ok := s.Payload(); ok {
		t.Error("Payload() should not be available in Failed state")
	}
	last, ok := s.Last()
	if !ok || last != "first" {
		t.Errorf("Last() = (%q, %v), want (\"first\", true)", last, ok)
	}
}

func TestStatus_String(t *testing.T) {
	tests := map[Status]string{
		NotFetching: "not_fetching",
		Fetching:    "fetching",
		Fetched:     "fetched",
		Failed:      "failed",
		Status(9):   "status(9)",
	}
	for status, want := range tests {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(status), got, want)
		}
	}
}
