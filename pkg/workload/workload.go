package workload

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/eth-easl/memanomaly/pkg/common"
	"github.com/eth-easl/memanomaly/pkg/generator"
)

type Request struct {
	Assignment   generator.Assignment
	HoldDuration time.Duration
}

// Report is printed by the worker on stdout as a single JSON line.
type Report struct {
	Iteration          int64  `json:"iteration"`
	Distribution       string `json:"distribution"`
	RequestedPages     uint64 `json:"requested_pages"`
	AllocatedBytes     uint64 `json:"allocated_bytes"`
	Allocated          bool   `json:"allocated"`
	DurationInMicroSec int64  `json:"duration_us"`
}

// Run draws a page count from the assigned distribution, maps that many
// pages, holds them for req.HoldDuration and unmaps them. A failed
// allocation is logged and the hold still happens.
func Run(req Request, sampler *generator.NormalSampler) Report {
	start := time.Now()

	pages := common.PageCount(sampler.Sample(req.Assignment.Mean, req.Assignment.StdDev))
	report := Report{
		Iteration:      req.Assignment.Iteration,
		Distribution:   req.Assignment.Distribution.String(),
		RequestedPages: pages,
	}

	pagesMapped, err := allocate(pages)
	if err != nil {
		log.Warnf("Failed to allocate %d pages (%d KiB): %v", pages, common.B2Kib(common.Pages2b(pages)), err)
	} else {
		report.Allocated = true
		report.AllocatedBytes = uint64(len(pagesMapped))
	}

	time.Sleep(req.HoldDuration)

	if err := release(pagesMapped); err != nil {
		log.Warnf("Failed to release allocation: %v", err)
	}

	report.DurationInMicroSec = time.Since(start).Microseconds()
	return report
}

func allocate(pages uint64) ([]byte, error) {
	if pages == 0 {
		return nil, nil
	}

	pageSize := uint64(common.PageSize())
	if pages > uint64(math.MaxInt)/pageSize {
		return nil, fmt.Errorf("%d pages exceed the address space", pages)
	}

	//* To avoid unnecessary overhead, memory allocation is at the granularity of os pages.
	mem, err := unix.Mmap(-1, 0, int(pages*pageSize),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}

	mem[0] = byte(1) //* Materialise allocated memory.
	return mem, nil
}

func release(mem []byte) error {
	if mem == nil {
		return nil
	}
	return unix.Munmap(mem)
}

// Serve is the body of a worker process: it parses the worker arguments,
// runs once with a freshly seeded sampler and writes the report to out.
func Serve(args []string, out io.Writer) error {
	req, err := ParseArguments(args)
	if err != nil {
		return err
	}

	log.Debugf("Worker %d sampling from %s N(%g, %g)",
		req.Assignment.Iteration, req.Assignment.Distribution, req.Assignment.Mean, req.Assignment.StdDev)

	report := Run(req, generator.NewTimeSeededNormalSampler())

	return json.NewEncoder(out).Encode(report)
}

// DecodeReport parses the output of Serve.
func DecodeReport(output []byte) (Report, error) {
	var report Report
	err := json.Unmarshal(output, &report)
	return report, err
}
