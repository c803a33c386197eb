package driver

import (
	"os/exec"

	log "github.com/sirupsen/logrus"
)

// RealtimePlotter is an external viewer tailing the data file while the
// experiment runs. All methods are no-ops on a nil plotter.
type RealtimePlotter struct {
	cmd *exec.Cmd
}

func plotterArguments(dataPath string) []string {
	return []string{
		dataPath,
		"--xlabel", "Child Proccess", "-x", "1",
		"--ylabel", "Mem. Usage (pages)", "-y", "2",
		"--ylabel", "Classifier Output", "-d", "-y", "3",
	}
}

// StartRealtimePlotter launches command on dataPath. Failing to start it only
// loses the live view, so nil is returned with a warning.
func StartRealtimePlotter(command string, dataPath string) *RealtimePlotter {
	cmd := exec.Command(command, plotterArguments(dataPath)...)
	if err := cmd.Start(); err != nil {
		log.Warnf("Failed to start plotter %s: %v", command, err)
		return nil
	}

	log.Infof("Started plotter %s (pid %d) on %s", command, cmd.Process.Pid, dataPath)
	return &RealtimePlotter{cmd: cmd}
}

// Kill stops the plotter of an aborted experiment.
func (p *RealtimePlotter) Kill() {
	if p == nil {
		return
	}

	if err := p.cmd.Process.Kill(); err != nil {
		log.Debugf("Failed to kill plotter: %v", err)
	}
	_ = p.cmd.Wait()
}

// Release leaves the plotter open after the monitor exits.
func (p *RealtimePlotter) Release() {
	if p == nil {
		return
	}

	if err := p.cmd.Process.Release(); err != nil {
		log.Debugf("Failed to release plotter: %v", err)
	}
}
