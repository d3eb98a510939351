package iso8583

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// Processor provides high-level concurrent processing for ISO8583 messages.
// It unpacks raw byte slices into Message structs using a pool of goroutines.
type Processor struct {
	packager     *CompiledPackager // Compiled message schema
	concurrency  int               // Max number of goroutines for processing
	msgOpts      []MessageOption   // Applied to every message handed out
	errorHandler func(error)       // Callback for handling errors
	logger       *slog.Logger
}

// ProcessorOption defines a function signature for configuring a Processor.
type ProcessorOption func(*Processor)

// WithConcurrency sets the maximum number of concurrent goroutines for the processor.
func WithConcurrency(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithMessageOptions sets the options used to create every decoded message,
// e.g. WithSize to bound the fields a processor accepts.
func WithMessageOptions(opts ...MessageOption) ProcessorOption {
	return func(p *Processor) {
		p.msgOpts = opts
	}
}

// WithErrorHandler sets a custom error handler for errors encountered during
// batch or stream processing.
func WithErrorHandler(handler func(error)) ProcessorOption {
	return func(p *Processor) {
		p.errorHandler = handler
	}
}

// WithProcessorLogger sets the logger used by the default error handler.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a new Processor with the given packager and options.
func NewProcessor(packager *CompiledPackager, opts ...ProcessorOption) *Processor {
	p := &Processor{
		packager:    packager,
		concurrency: 4, // Default concurrency
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.errorHandler == nil {
		p.errorHandler = func(err error) { // Default error handler
			p.logger.Error("processor error", slog.Any("error", err))
		}
	}

	return p
}

// Process unpacks a single raw ISO8583 message.
func (p *Processor) Process(data []byte) (*Message, error) {
	// Get a new message from the pool (via NewMessage)
	msg := NewMessage(p.msgOpts...)

	if err := p.packager.UnpackBytes(data, msg); err != nil {
		msg.Release() // Release message back to pool on error
		return nil, err
	}

	// Note: The caller is responsible for calling msg.Release() when done.
	return msg, nil
}

// ProcessBatch unpacks a slice of raw messages concurrently.
// It uses a semaphore to limit concurrency to p.concurrency.
func (p *Processor) ProcessBatch(ctx context.Context, dataSlice [][]byte) ([]*Message, error) {
	results := make([]*Message, len(dataSlice))
	errs := make([]error, len(dataSlice))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.concurrency) // Limit concurrent goroutines

	for i, data := range dataSlice {
		// Check for context cancellation before starting a new job
		err := ctx.Err()
		if err == nil {
			select {
			case <-ctx.Done():
				err = ctx.Err()
			case semaphore <- struct{}{}: // Acquire semaphore slot
			}
		}
		if err != nil {
			// Don't start new jobs if context is cancelled
			wg.Wait() // Wait for already-running jobs
			releaseAll(results)
			return nil, err
		}

		wg.Add(1)
		go func(idx int, msgData []byte) {
			defer wg.Done()
			defer func() { <-semaphore }() // Release semaphore slot

			msg, err := p.Process(msgData)
			if err != nil {
				errs[idx] = err
				p.errorHandler(err)
				return
			}
			results[idx] = msg
		}(i, data)
	}

	wg.Wait() // Wait for all goroutines to finish

	// Note: a failed batch still returns the messages that decoded; the
	// caller must release them.
	return results, errors.Join(errs...)
}

func releaseAll(msgs []*Message) {
	for _, msg := range msgs {
		if msg != nil {
			msg.Release()
		}
	}
}

// ProcessStream concurrently unpacks messages from an input channel and
// sends the parsed *Message structs to an output channel. Messages may be
// delivered out of order.
func (p *Processor) ProcessStream(ctx context.Context, input <-chan []byte, output chan<- *Message) error {
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.concurrency) // Limit concurrency

	for {
		select {
		case <-ctx.Done():
			// Context cancelled, wait for running jobs and exit
			wg.Wait()
			return ctx.Err()

		case data, ok := <-input:
			if !ok {
				// Input channel closed, wait for running jobs and exit
				wg.Wait()
				return nil
			}

			select {
			case semaphore <- struct{}{}: // Acquire semaphore
			case <-ctx.Done():
				wg.Wait()
				return ctx.Err()
			}

			wg.Add(1)
			go func(msgData []byte) {
				defer wg.Done()
				defer func() { <-semaphore }() // Release semaphore

				msg, err := p.Process(msgData)
				if err != nil {
					p.errorHandler(err)
					return
				}

				// Send the parsed message to the output channel,
				// or stop if the context is cancelled.
				select {
				case output <- msg:
				case <-ctx.Done():
					msg.Release() // Release if we can't send
				}
			}(data)
		}
	}
}

// ProcessFrames reads length-headed messages from r and processes them as
// ProcessStream does until r is exhausted. A malformed header stops the
// stream since the framing is lost.
func (p *Processor) ProcessFrames(ctx context.Context, r io.Reader, htype HeaderType, output chan<- *Message) error {
	input := make(chan []byte, p.concurrency)
	done := make(chan error, 1)
	go func() {
		done <- p.ProcessStream(ctx, input, output)
	}()

	var readErr error
	for {
		frame, err := ReadFrame(r, htype)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			break
		}
		select {
		case input <- frame:
			continue
		case <-ctx.Done():
		}
		break
	}
	close(input)

	if err := <-done; err != nil {
		return err
	}
	return readErr
}
