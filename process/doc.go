// Package process finds running processes by executable name and
// terminates them.
//
// Every operation takes a fresh snapshot of the process table, so no state
// survives between calls. Matching is case-insensitive and never includes
// the calling process. Operations can be restricted to processes owned by
// the same principal as the caller; when the caller's own identity cannot be
// resolved the restriction is dropped rather than treated as "no match".
//
// The four host operations reduce to a two-valued Result:
//
//	f := process.Default()
//	if f.FindProcess("app.exe") == process.Success {
//	    f.KillProcessCurrentUser("app.exe")
//	}
package process
