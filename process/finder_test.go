package process_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/standardbeagle/nsis-process/process"
	"github.com/standardbeagle/nsis-process/process/processtest"
)

const (
	alice = processtest.User("alice")
	bob   = processtest.User("bob")
)

var errDenied = errors.New("access denied")

// desktop returns a table where pid 100 is the caller, running as alice.
func desktop() *processtest.System {
	sys := &processtest.System{Self: 100}
	sys.Add(4, "System", nil).
		Add(100, "setup.exe", alice).
		Add(200, "app.exe", alice).
		Add(300, "App.EXE", bob).
		Add(400, "APP.exe", nil).
		Add(500, "explorer.exe", alice)
	return sys
}

func TestFinder_Select(t *testing.T) {
	tests := []struct {
		name  string
		query string
		opts  process.Options
		want  []int
	}{
		{"any user", "app.exe", process.Options{}, []int{200, 300, 400}},
		{"upper case query", "APP.EXE", process.Options{}, []int{200, 300, 400}},
		{"current user", "app.exe", process.Options{CurrentUser: true}, []int{200}},
		{"self excluded", "setup.exe", process.Options{}, nil},
		{"no such process", "definitely_not_a_real_process.exe", process.Options{}, nil},
		{"empty name", "", process.Options{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := process.NewFinder(desktop()).Select(tt.query, tt.opts)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Select(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFinder_FindProcess(t *testing.T) {
	f := process.NewFinder(desktop())

	if got := f.FindProcess("explorer.exe"); got != process.Success {
		t.Errorf("FindProcess(explorer.exe) = %v, want success", got)
	}
	if got := f.FindProcess("definitely_not_a_real_process.exe"); got != process.Failure {
		t.Errorf("FindProcess(missing) = %v, want failure", got)
	}
	if got := f.FindProcess("setup.exe"); got != process.Failure {
		t.Errorf("FindProcess(own name) = %v, want failure", got)
	}
}

func TestFinder_FindProcessCurrentUser(t *testing.T) {
	t.Run("owned process", func(t *testing.T) {
		f := process.NewFinder(desktop())
		if got := f.FindProcessCurrentUser("app.exe"); got != process.Success {
			t.Errorf("got %v, want success", got)
		}
	})

	t.Run("other user only", func(t *testing.T) {
		sys := &processtest.System{Self: 1}
		sys.Add(1, "setup.exe", alice).Add(2, "app.exe", bob)
		if got := process.NewFinder(sys).FindProcessCurrentUser("app.exe"); got != process.Failure {
			t.Errorf("got %v, want failure", got)
		}
	})

	t.Run("unresolvable process", func(t *testing.T) {
		sys := &processtest.System{Self: 1}
		sys.Add(1, "setup.exe", alice).Add(2, "app.exe", nil)
		if got := process.NewFinder(sys).FindProcessCurrentUser("app.exe"); got != process.Failure {
			t.Errorf("got %v, want failure", got)
		}
	})

	t.Run("caller identity unresolved", func(t *testing.T) {
		sys := &processtest.System{Self: 1}
		sys.Add(1, "setup.exe", nil).Add(2, "app.exe", bob)
		if got := process.NewFinder(sys).FindProcessCurrentUser("app.exe"); got != process.Success {
			t.Errorf("got %v, want success (unrestricted)", got)
		}
	})
}

func TestFinder_KillProcess(t *testing.T) {
	t.Run("all terminated", func(t *testing.T) {
		sys := desktop()
		if got := process.NewFinder(sys).KillProcess("app.exe"); got != process.Success {
			t.Errorf("got %v, want success", got)
		}
		if want := []int{200, 300, 400}; !slices.Equal(sys.Killed(), want) {
			t.Errorf("Killed = %v, want %v", sys.Killed(), want)
		}
	})

	t.Run("one failure fails the batch", func(t *testing.T) {
		sys := desktop()
		sys.KillErrs = map[int]error{300: errDenied}
		if got := process.NewFinder(sys).KillProcess("app.exe"); got != process.Failure {
			t.Errorf("got %v, want failure", got)
		}
		// Termination continues past the failure.
		if want := []int{200, 300, 400}; !slices.Equal(sys.Killed(), want) {
			t.Errorf("Killed = %v, want %v", sys.Killed(), want)
		}
	})

	t.Run("nothing to kill", func(t *testing.T) {
		sys := desktop()
		if got := process.NewFinder(sys).KillProcess("missing.exe"); got != process.Failure {
			t.Errorf("got %v, want failure", got)
		}
		if len(sys.Killed()) != 0 {
			t.Errorf("Killed = %v, want none", sys.Killed())
		}
	})

	t.Run("never kills self", func(t *testing.T) {
		sys := desktop()
		process.NewFinder(sys).KillProcess("setup.exe")
		if slices.Contains(sys.Killed(), 100) {
			t.Errorf("Killed = %v, includes caller", sys.Killed())
		}
	})
}

func TestFinder_KillProcessCurrentUser(t *testing.T) {
	t.Run("owned only", func(t *testing.T) {
		sys := desktop()
		if got := process.NewFinder(sys).KillProcessCurrentUser("app.exe"); got != process.Success {
			t.Errorf("got %v, want success", got)
		}
		if want := []int{200}; !slices.Equal(sys.Killed(), want) {
			t.Errorf("Killed = %v, want %v", sys.Killed(), want)
		}
	})

	t.Run("no owned matches", func(t *testing.T) {
		sys := &processtest.System{Self: 1}
		sys.Add(1, "setup.exe", alice).Add(2, "app.exe", bob)
		if got := process.NewFinder(sys).KillProcessCurrentUser("app.exe"); got != process.Failure {
			t.Errorf("got %v, want failure", got)
		}
		if len(sys.Killed()) != 0 {
			t.Errorf("Killed = %v, want none", sys.Killed())
		}
	})

	t.Run("caller identity unresolved", func(t *testing.T) {
		sys := &processtest.System{Self: 1}
		sys.Add(1, "setup.exe", nil).Add(2, "app.exe", bob).Add(3, "app.exe", nil)
		if got := process.NewFinder(sys).KillProcessCurrentUser("app.exe"); got != process.Success {
			t.Errorf("got %v, want success", got)
		}
		if want := []int{2, 3}; !slices.Equal(sys.Killed(), want) {
			t.Errorf("Killed = %v, want %v", sys.Killed(), want)
		}
	})
}

func TestFinder_SnapshotFailure(t *testing.T) {
	sys := desktop()
	sys.SnapshotErr = process.ErrSnapshot
	f := process.NewFinder(sys)

	for name, op := range map[string]func(string) process.Result{
		"FindProcess":            f.FindProcess,
		"FindProcessCurrentUser": f.FindProcessCurrentUser,
		"KillProcess":            f.KillProcess,
		"KillProcessCurrentUser": f.KillProcessCurrentUser,
	} {
		if got := op("app.exe"); got != process.Failure {
			t.Errorf("%s = %v, want failure", name, got)
		}
	}
	if len(sys.Killed()) != 0 {
		t.Errorf("Killed = %v, want none", sys.Killed())
	}
}

func TestFinder_RepeatedCallsResnapshot(t *testing.T) {
	sys := desktop()
	f := process.NewFinder(sys)

	first := f.Select("app.exe", process.Options{})
	second := f.Select("app.exe", process.Options{})
	if len(first) != len(second) {
		t.Errorf("match sizes differ: %d then %d", len(first), len(second))
	}
	if sys.Snapshots() != 2 {
		t.Errorf("Snapshots = %d, want 2", sys.Snapshots())
	}
}

func TestFinder_KillThenFind(t *testing.T) {
	t.Run("kill clears every match", func(t *testing.T) {
		sys := desktop()
		sys.RemoveOnKill = true
		f := process.NewFinder(sys)

		if got := f.KillProcess("app.exe"); got != process.Success {
			t.Fatalf("KillProcess = %v, want success", got)
		}
		if got := f.FindProcess("app.exe"); got != process.Failure {
			t.Errorf("FindProcess after kill = %v, want failure", got)
		}
		// A second kill has nothing left to act on.
		if got := f.KillProcess("app.exe"); got != process.Failure {
			t.Errorf("second KillProcess = %v, want failure", got)
		}
		if got := f.FindProcess("explorer.exe"); got != process.Success {
			t.Errorf("FindProcess(explorer.exe) = %v, want success", got)
		}
	})

	t.Run("current user kill leaves other owners", func(t *testing.T) {
		sys := desktop()
		sys.RemoveOnKill = true
		f := process.NewFinder(sys)

		if got := f.KillProcessCurrentUser("app.exe"); got != process.Success {
			t.Fatalf("KillProcessCurrentUser = %v, want success", got)
		}
		if got := f.FindProcessCurrentUser("app.exe"); got != process.Failure {
			t.Errorf("FindProcessCurrentUser after kill = %v, want failure", got)
		}
		if want := []int{300, 400}; !slices.Equal(f.Select("app.exe", process.Options{}), want) {
			t.Errorf("remaining = %v, want %v", f.Select("app.exe", process.Options{}), want)
		}
	})

	t.Run("failed kill stays visible", func(t *testing.T) {
		sys := desktop()
		sys.RemoveOnKill = true
		sys.KillErrs = map[int]error{300: errDenied}
		f := process.NewFinder(sys)

		if got := f.KillProcess("app.exe"); got != process.Failure {
			t.Fatalf("KillProcess = %v, want failure", got)
		}
		if want := []int{300}; !slices.Equal(f.Select("app.exe", process.Options{}), want) {
			t.Errorf("remaining = %v, want %v", f.Select("app.exe", process.Options{}), want)
		}
	})
}

func TestResultString(t *testing.T) {
	tests := []struct {
		result process.Result
		want   string
		code   int
	}{
		{process.Success, "success", 0},
		{process.Failure, "failure", 1},
		{process.Result(7), "unknown", 7},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.result.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if got := tt.result.Code(); got != tt.code {
				t.Errorf("Code() = %d, want %d", got, tt.code)
			}
		})
	}
}

// drawTable builds a random process table that always contains the caller.
func drawTable(rt *rapid.T) (*processtest.System, string) {
	names := []string{"app.exe", "App.Exe", "APP.EXE", "other.exe", "svc.exe"}
	users := []process.Identity{alice, bob, nil}

	self := rapid.IntRange(1, 50).Draw(rt, "self")
	sys := &processtest.System{Self: self}
	sys.Add(self, rapid.SampledFrom(names).Draw(rt, "selfName"), rapid.SampledFrom(users).Draw(rt, "selfUser"))

	n := rapid.IntRange(0, 20).Draw(rt, "n")
	for i := 0; i < n; i++ {
		pid := rapid.IntRange(1, 50).Draw(rt, "pid")
		sys.Add(pid, rapid.SampledFrom(names).Draw(rt, "name"), rapid.SampledFrom(users).Draw(rt, "user"))
	}
	return sys, rapid.SampledFrom(names).Draw(rt, "query")
}

func TestFinder_NeverSelectsSelf(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sys, query := drawTable(rt)
		opts := process.Options{CurrentUser: rapid.Bool().Draw(rt, "currentUser")}

		f := process.NewFinder(sys)
		if slices.Contains(f.Select(query, opts), sys.Self) {
			rt.Fatalf("Select(%q) includes caller pid %d", query, sys.Self)
		}
		f.Kill(query, opts)
		if slices.Contains(sys.Killed(), sys.Self) {
			rt.Fatalf("Kill(%q) terminated caller pid %d", query, sys.Self)
		}
	})
}

func TestFinder_CaseInsensitive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sys, query := drawTable(rt)

		var b strings.Builder
		for _, r := range query {
			if rapid.Bool().Draw(rt, "upper") {
				b.WriteString(strings.ToUpper(string(r)))
			} else {
				b.WriteString(strings.ToLower(string(r)))
			}
		}
		mixed := b.String()

		f := process.NewFinder(sys)
		a := f.Select(query, process.Options{})
		c := f.Select(mixed, process.Options{})
		if !slices.Equal(a, c) {
			rt.Fatalf("Select(%q) = %v, Select(%q) = %v", query, a, mixed, c)
		}
	})
}

func TestFinder_KillAllOrNothing(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sys, query := drawTable(rt)
		sys.KillErrs = map[int]error{}
		for _, r := range sys.Records {
			if rapid.Bool().Draw(rt, "fails") {
				sys.KillErrs[r.PID] = errDenied
			}
		}
		opts := process.Options{CurrentUser: rapid.Bool().Draw(rt, "currentUser")}

		f := process.NewFinder(sys)
		selected := f.Select(query, opts)
		got := f.Kill(query, opts)

		if !slices.Equal(sys.Killed(), selected) {
			rt.Fatalf("Killed = %v, want every selected pid %v", sys.Killed(), selected)
		}

		want := process.Success
		if len(selected) == 0 {
			want = process.Failure
		}
		for _, pid := range selected {
			if _, fails := sys.KillErrs[pid]; fails {
				want = process.Failure
			}
		}
		if got != want {
			rt.Fatalf("Kill(%q) = %v, want %v", query, got, want)
		}
	})
}

func TestFinder_UnresolvedCallerIsUnrestricted(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sys, query := drawTable(rt)
		delete(sys.Owners, sys.Self)

		f := process.NewFinder(sys)
		if got, want := f.FindProcessCurrentUser(query), f.FindProcess(query); got != want {
			rt.Fatalf("FindProcessCurrentUser = %v, FindProcess = %v", got, want)
		}
		if got, want := f.Select(query, process.Options{CurrentUser: true}), f.Select(query, process.Options{}); !slices.Equal(got, want) {
			rt.Fatalf("restricted %v != unrestricted %v", got, want)
		}
	})
}
