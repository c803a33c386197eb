package generator

import (
	"io"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/eth-easl/memanomaly/pkg/common"
)

// DistributionController owns the persisted DistributionConfig. Every
// read-modify-write holds an exclusive flock on the state file, so several
// controllers (or processes) pointing at the same path never lose an update.
type DistributionController struct {
	mutex sync.Mutex
	path  string
}

// InitializeDistributionController validates params and overwrites any previous
// state at path with a fresh config at iteration 0.
func InitializeDistributionController(path string, params []float64) (*DistributionController, error) {
	cfg, err := NewDistributionConfig(params)
	if err != nil {
		return nil, err
	}

	if err := common.EnsureParentDirectory(path); err != nil {
		return nil, common.NewError(common.ConfigError, err, "cannot create directory for %s", path)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, common.NewError(common.ConfigError, err, "failed to open %s", path)
	}
	defer file.Close()

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX); err != nil {
		return nil, common.NewError(common.ConfigError, err, "failed to lock %s", path)
	}

	// Truncate only under the lock so readers never see an empty file.
	text, _ := cfg.MarshalText()
	if err := file.Truncate(0); err != nil {
		return nil, common.NewError(common.ConfigError, err, "failed to truncate %s", path)
	}
	if _, err := file.WriteAt(text, 0); err != nil {
		return nil, common.NewError(common.ConfigError, err, "failed to write %s", path)
	}

	log.Debugf("Initialized distribution state at %s: threshold=%d D1=N(%g, %g) D2=N(%g, %g)",
		path, cfg.SwitchThreshold, cfg.Mean1, cfg.StdDev1, cfg.Mean2, cfg.StdDev2)

	return NewDistributionController(path), nil
}

// NewDistributionController attaches to state that was initialized earlier.
func NewDistributionController(path string) *DistributionController {
	return &DistributionController{path: path}
}

func (c *DistributionController) Path() string {
	return c.path
}

// NextDistributionParams selects the distribution for the current iteration
// and persists the incremented iteration.
func (c *DistributionController) NextDistributionParams() (Assignment, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var assignment Assignment
	err := c.update(func(cfg *DistributionConfig) {
		assignment = cfg.Select()
		cfg.Iteration++
	})

	return assignment, err
}

// State reads the persisted config without advancing it.
func (c *DistributionController) State() (DistributionConfig, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	file, err := os.Open(c.path)
	if err != nil {
		return DistributionConfig{}, common.NewError(common.ConfigError, err, "failed to open %s", c.path)
	}
	defer file.Close()

	if err := unix.Flock(int(file.Fd()), unix.LOCK_SH); err != nil {
		return DistributionConfig{}, common.NewError(common.ConfigError, err, "failed to lock %s", c.path)
	}

	return readDistributionConfig(file, c.path)
}

func (c *DistributionController) update(mutate func(cfg *DistributionConfig)) error {
	file, err := os.OpenFile(c.path, os.O_RDWR, 0)
	if err != nil {
		return common.NewError(common.ConfigError, err, "failed to open %s", c.path)
	}
	// Closing the descriptor also drops the lock.
	defer file.Close()

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX); err != nil {
		return common.NewError(common.ConfigError, err, "failed to lock %s", c.path)
	}

	cfg, err := readDistributionConfig(file, c.path)
	if err != nil {
		return err
	}

	mutate(&cfg)

	text, _ := cfg.MarshalText()
	if err := file.Truncate(0); err != nil {
		return common.NewError(common.ConfigError, err, "failed to truncate %s", c.path)
	}
	if _, err := file.WriteAt(text, 0); err != nil {
		return common.NewError(common.ConfigError, err, "failed to write %s", c.path)
	}

	return nil
}

func readDistributionConfig(r io.Reader, path string) (DistributionConfig, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return DistributionConfig{}, common.NewError(common.ConfigError, err, "failed to read %s", path)
	}

	var cfg DistributionConfig
	if err := cfg.UnmarshalText(content); err != nil {
		return DistributionConfig{}, common.NewError(common.ConfigError, err, "malformed distribution state in %s", path)
	}

	return cfg, nil
}
