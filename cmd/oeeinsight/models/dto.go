package models

import (
	"time"

	"github.com/shopfloor-insight/shopfloor-insight/pkg/datamodel"
)

// Period is the half-open time window a response refers to
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// OeeBreakdown is the averaged component view over the calculations of one
// window, together with the underlying records.
type OeeBreakdown struct {
	Oee          float64                    `json:"oee"`
	Availability float64                    `json:"availability"`
	Performance  float64                    `json:"performance"`
	Quality      float64                    `json:"quality"`
	Calculations []datamodel.OeeCalculation `json:"calculations"`
	Period       Period                     `json:"period"`
}

// BenchmarkComparison compares the latest calculation against the active
// target. Sides without data are omitted from the response.
type BenchmarkComparison struct {
	Current           *float64 `json:"current,omitempty"`
	Availability      *float64 `json:"availability,omitempty"`
	Performance       *float64 `json:"performance,omitempty"`
	Quality           *float64 `json:"quality,omitempty"`
	Target            *float64 `json:"target,omitempty"`
	WorldClass        *float64 `json:"worldClass,omitempty"`
	IndustryBenchmark *float64 `json:"industryBenchmark,omitempty"`
	CompanyAverage    *float64 `json:"companyAverage,omitempty"`
}

// TargetVsActualPoint is one calculation projected onto the target timeline
type TargetVsActualPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Actual    float64   `json:"actual"`
	Target    *float64  `json:"target,omitempty"`
	Variance  *float64  `json:"variance,omitempty"`
}

// TargetVsActual is the target tracking response for one window
type TargetVsActual struct {
	DataPoints []TargetVsActualPoint `json:"dataPoints"`
	Target     *float64              `json:"target,omitempty"`
	Period     Period                `json:"period"`
}
