package kernel

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// capturingStandardStreams redirects the process-wide standard streams for
// the duration of body. Stdout/stderr writes are pumped into sink when one
// is set; with no sink they pass through untouched. Stdin is substituted
// with an exhausted pipe so evaluated code cannot read the host's terminal.
// Everything is restored before this function returns, whatever body does.
//
// This redirection exists alongside the explicit Run API because evaluated
// code is untrusted and may call low-level I/O primitives that bypass any
// explicit sink or source object.
func capturingStandardStreams(sink OutputSink, body func() error) error {
	restoreOut := redirectOutputs(sink)
	defer restoreOut()

	restoreIn := redirectInput()
	defer restoreIn()

	return body()
}

// redirectOutputs swaps os.Stdout/os.Stderr for pipes pumped into sink.
// Returns a restore func that closes the pipes and waits for the pumps to
// drain. A nil sink leaves the streams untouched.
func redirectOutputs(sink OutputSink) func() {
	if sink == nil {
		return func() {}
	}

	prevOut, prevErr := os.Stdout, os.Stderr

	outR, outW, err := os.Pipe()
	if err != nil {
		return func() {}
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return func() {}
	}

	os.Stdout = outW
	os.Stderr = errW

	var wg sync.WaitGroup
	wg.Add(2)
	go pumpLines(&wg, outR, sink.Stdout)
	go pumpLines(&wg, errR, sink.Stderr)

	return func() {
		os.Stdout = prevOut
		os.Stderr = prevErr
		outW.Close()
		errW.Close()
		wg.Wait()
		outR.Close()
		errR.Close()
	}
}

func pumpLines(wg *sync.WaitGroup, r io.Reader, emit func(string)) {
	defer wg.Done()
	br := bufio.NewReader(r)
	for {
		chunk, err := br.ReadString('\n')
		if chunk != "" {
			emit(chunk)
		}
		if err != nil {
			return
		}
	}
}

// redirectInput swaps os.Stdin for an exhausted pipe. The input source is
// single-consumer: only the Run's reader calls ReadInput, one request per
// read past buffered data. A pipe cannot report reader demand, so feeding
// it from the source would consume input nobody asked for and starve later
// submissions; low-level descriptor reads see EOF instead.
func redirectInput() func() {
	prevIn := os.Stdin

	inR, inW, err := os.Pipe()
	if err != nil {
		return func() {}
	}
	inW.Close()
	os.Stdin = inR

	return func() {
		os.Stdin = prevIn
		inR.Close()
	}
}
