// Package process provides child process ownership for the integration layer.
//
// A Process wraps an exec.Cmd spawned with its stdin and stdout redirected to
// pipes and its stderr discarded. The two pipes are each meant to be handed
// to exactly one reader or writer for the lifetime of the process; the
// language server transport runs one pump per pipe.
//
// # Lifecycle
//
// Spawn starts the child and begins watching for its exit:
//
//	proc, err := process.Spawn("gopls", "serve")
//	if err != nil {
//	    // feature unavailable, keep going without it
//	}
//	defer proc.Release()
//
// Release closes both pipes and kills the child. It is idempotent and is the
// guaranteed termination path: owners must call it rather than relying on the
// child noticing a closed pipe.
//
// # Exit tracking
//
//	<-proc.Done()
//	fmt.Printf("exit code: %d\n", proc.ExitCode())
//
// Both Process values and their methods are safe for concurrent use.
package process
