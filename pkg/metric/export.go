package metric

import (
	"os"
	"sync"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/eth-easl/memanomaly/pkg/common"
)

type Exporter struct {
	mutex        sync.Mutex
	trialRecords []TrialRecord
}

func NewExporter() *Exporter {
	return &Exporter{
		//* Note that the zero value of a mutex is usable as-is.
		trialRecords: []TrialRecord{},
	}
}

func (ep *Exporter) ReportTrial(record TrialRecord) {
	ep.mutex.Lock()
	defer ep.mutex.Unlock()
	ep.trialRecords = append(ep.trialRecords, record)
}

func (ep *Exporter) GetTrialRecordLen() int {
	ep.mutex.Lock()
	defer ep.mutex.Unlock()
	return len(ep.trialRecords)
}

// Records returns a copy of everything reported so far.
func (ep *Exporter) Records() []TrialRecord {
	ep.mutex.Lock()
	defer ep.mutex.Unlock()
	return append([]TrialRecord(nil), ep.trialRecords...)
}

// FinishAndSave writes all trial records as CSV to <outputPathPrefix>_trials.csv.
func (ep *Exporter) FinishAndSave(outputPathPrefix string) (string, error) {
	fileName := outputPathPrefix + "_trials.csv"
	if err := common.EnsureParentDirectory(fileName); err != nil {
		return "", common.NewError(common.SinkError, err, "cannot create output directory for %s", fileName)
	}

	f, err := os.Create(fileName)
	if err != nil {
		return "", common.NewError(common.SinkError, err, "cannot create %s", fileName)
	}
	defer f.Close()

	records := ep.Records()
	if err := gocsv.MarshalFile(&records, f); err != nil {
		return "", common.NewError(common.SinkError, err, "cannot write %s", fileName)
	}

	log.Infof("Exported %d trial records to %s", len(records), fileName)
	return fileName, nil
}

// ReadTrialRecords loads a CSV written by FinishAndSave.
func ReadTrialRecords(fileName string) ([]TrialRecord, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []TrialRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, err
	}
	return records, nil
}
