// Command nsisproc finds and terminates processes by executable name.
//
// Usage:
//
//	# Is app.exe running (excluding this process)?
//	nsisproc find app.exe
//
//	# Kill every app.exe owned by the current user
//	nsisproc kill --current-user app.exe
//
//	# Invoke a plugin function through the host stack
//	nsisproc call KillProcess app.exe
//
//	# Serve the text protocol on stdin/stdout
//	nsisproc serve
//
// The exit status is the operation's result code: 0 on success, 1 on
// failure, 2 on usage errors.
package main

import (
	"context"
	"os"
	"os/signal"

	"k8s.io/klog/v2"

	"github.com/standardbeagle/nsis-process/process"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], &app{
		finder:  process.Default(),
		version: version,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	})
	stop()
	klog.Flush()
	os.Exit(code)
}
