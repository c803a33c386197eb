package config

import (
	"encoding/json"
	"os"

	log "github.com/sirupsen/logrus"
)

type MonitorConfiguration struct {
	TotalTrials     int     `json:"TotalTrials"`
	TrainingTrials  int     `json:"TrainingTrials"`
	ZScoreThreshold float64 `json:"ZScoreThreshold"`

	HoldDurationMilli    int `json:"HoldDurationMilli"`
	PollIntervalMicro    int `json:"PollIntervalMicro"`
	WorkerTimeoutSeconds int `json:"WorkerTimeoutSeconds"`
	CalibrationWorkers   int `json:"CalibrationWorkers"`

	DistributionStatePath string `json:"DistributionStatePath"`
	DataPath              string `json:"DataPath"`
	OutputPathPrefix      string `json:"OutputPathPrefix"`

	EnablePlotter       bool   `json:"EnablePlotter"`
	PlotterCommand      string `json:"PlotterCommand"`
	RenderFigure        bool   `json:"RenderFigure"`
	MetricsTextfilePath string `json:"MetricsTextfilePath"`
}

func ReadConfigurationFile(path string) MonitorConfiguration {
	byteValue, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}

	config := DefaultConfiguration()
	err = json.Unmarshal(byteValue, &config)
	if err != nil {
		log.Fatal(err)
	}

	return config
}
