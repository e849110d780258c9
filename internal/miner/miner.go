// Package miner implements the mining worker and its I/O loop: a
// dedicated goroutine searches nonces on a template while a separate
// loop polls the node every five seconds to keep that template current
// and submits whatever the worker finds.
package miner

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dkwon/toychain/internal/chain"
	"github.com/dkwon/toychain/internal/wire"
	"github.com/dkwon/toychain/pkg/btckey"
)

// errNoTemplate is returned when a FetchTemplate reply carries no block.
var errNoTemplate = errors.New("miner: node returned no template")

// pollInterval is how often the I/O loop checks on the current template.
const pollInterval = 5 * time.Second

// stepsPerRound bounds how many nonces the mining worker tries before
// yielding back to the scheduler and re-checking the mining flag. This
// keeps the worker responsive to a template being invalidated mid-search.
const stepsPerRound = 2_000_000

// Miner coordinates one dedicated mining worker against a Client.
type Miner struct {
	client Client
	pub    btckey.PublicKey
	logger *zap.Logger

	templateMu      sync.Mutex
	currentTemplate *chain.Block

	mining atomic.Bool

	minedBlocks chan chain.Block

	stop chan struct{}
	wg   sync.WaitGroup
}

// Client is the connection the miner speaks the wire protocol over.
type Client interface {
	Send(msg wire.Message) (wire.Message, error)
}

// New constructs a Miner that will pay block rewards to pub.
func New(client Client, pub btckey.PublicKey, logger *zap.Logger) *Miner {
	return &Miner{
		client:      client,
		pub:         pub,
		logger:      logger,
		minedBlocks: make(chan chain.Block, 1),
		stop:        make(chan struct{}),
	}
}

// Run starts the mining worker and the I/O loop, and blocks until Stop
// is called.
func (m *Miner) Run() {
	m.wg.Add(2)
	go m.miningWorker()
	go m.ioLoop()
	m.wg.Wait()
}

// Stop signals both loops to exit. It does not wait for them; Run
// returns once both have finished.
func (m *Miner) Stop() {
	close(m.stop)
}

// miningWorker repeatedly hashes the current template while mining is
// set, pushing completed blocks to minedBlocks. It holds its own OS
// thread for its whole life and runs independently of
// the I/O loop so a slow or blocked network round trip never stalls the
// hash search.
func (m *Miner) miningWorker() {
	defer m.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	for {
		select {
		case <-m.stop:
			return
		default:
		}

		if !m.mining.Load() {
			runtime.Gosched()
			continue
		}

		m.templateMu.Lock()
		tmpl := m.currentTemplate
		m.templateMu.Unlock()
		if tmpl == nil {
			m.mining.Store(false)
			continue
		}

		candidate := *tmpl
		if candidate.Header.Mine(stepsPerRound) {
			select {
			case m.minedBlocks <- candidate:
			case <-m.stop:
				return
			}
			m.mining.Store(false)
		}
		runtime.Gosched()
	}
}

// ioLoop multiplexes the periodic template-refresh tick against the
// mining worker's completed-block channel.
func (m *Miner) ioLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return

		case <-ticker.C:
			m.onTick()

		case block := <-m.minedBlocks:
			if err := m.submit(block); err != nil {
				m.logger.Warn("submit mined block failed", zap.Error(err))
			}
			m.mining.Store(false)
		}
	}
}

func (m *Miner) onTick() {
	if !m.mining.Load() {
		tmpl, err := m.fetchTemplate()
		if err != nil {
			m.logger.Warn("fetch template failed", zap.Error(err))
			return
		}
		m.templateMu.Lock()
		m.currentTemplate = &tmpl
		m.templateMu.Unlock()
		m.mining.Store(true)
		return
	}

	m.templateMu.Lock()
	current := m.currentTemplate
	m.templateMu.Unlock()
	if current == nil {
		m.mining.Store(false)
		return
	}

	valid, err := m.validateTemplate(*current)
	if err != nil {
		m.logger.Warn("validate template failed", zap.Error(err))
		return
	}
	if !valid {
		m.mining.Store(false)
	}
}

func (m *Miner) fetchTemplate() (chain.Block, error) {
	resp, err := m.client.Send(wire.FetchTemplateMessage(m.pub))
	if err != nil {
		return chain.Block{}, err
	}
	if resp.Block == nil {
		return chain.Block{}, errNoTemplate
	}
	return *resp.Block, nil
}

func (m *Miner) validateTemplate(b chain.Block) (bool, error) {
	resp, err := m.client.Send(wire.ValidateTemplateMessage(b))
	if err != nil {
		return false, err
	}
	return resp.Valid, nil
}

func (m *Miner) submit(b chain.Block) error {
	_, err := m.client.Send(wire.SubmitTemplateMessage(b))
	return err
}
