package datamodel

import (
	"errors"
	"time"
)

// Sentinel errors shared between the storage layer and its callers
var (
	ErrEquipmentNotFound = errors.New("equipment not found")
	ErrTargetNotFound    = errors.New("no matching target")
)

// EquipmentStatus is the reported operating state of an equipment unit
type EquipmentStatus string

const (
	EquipmentRunning     EquipmentStatus = "RUNNING"
	EquipmentIdle        EquipmentStatus = "IDLE"
	EquipmentDown        EquipmentStatus = "DOWN"
	EquipmentMaintenance EquipmentStatus = "MAINTENANCE"
)

// DefaultIdealCycleTime is assumed (seconds per unit) when the equipment has no ideal cycle time configured
const DefaultIdealCycleTime float64 = 60

// WorldClassOee is the commonly cited world class OEE benchmark in percent
const WorldClassOee float64 = 85.0

// Equipment is the master data record for one equipment unit. It is maintained
// by an external system and read-only here.
type Equipment struct {
	ID             uint32          `json:"id"`
	Name           string          `json:"name"`
	Code           string          `json:"code"`
	Status         EquipmentStatus `json:"status"`
	Location       string          `json:"location,omitempty"`
	IdealCycleTime *float64        `json:"idealCycleTime,omitempty"` // seconds per unit
}

// DowntimeEvent is one recorded interval during which the equipment was not
// operating. EndTime nil means the event is still ongoing.
type DowntimeEvent struct {
	ID          uint32     `json:"id"`
	EquipmentID uint32     `json:"equipmentId"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	ReasonCode  string     `json:"reasonCode"`
}

// ProductionOrder is the fact view of an order that ran (fully or partially) on
// an equipment unit. Orders may overlap a query window; produced quantities of
// all overlapping orders are summed.
type ProductionOrder struct {
	ID               uint32     `json:"id"`
	EquipmentID      uint32     `json:"equipmentId"`
	OrderNumber      string     `json:"orderNumber"`
	ProductName      string     `json:"productName,omitempty"`
	ProducedQuantity int        `json:"producedQuantity"`
	StartTime        time.Time  `json:"startTime"`
	EndTime          *time.Time `json:"endTime,omitempty"`
}

// QualityCheckStatus is the outcome of one quality inspection
type QualityCheckStatus string

const (
	QualityCheckPassed QualityCheckStatus = "PASSED"
	QualityCheckFailed QualityCheckStatus = "FAILED"
)

// QualityCheck is one inspection result, linked to the equipment through its
// production order. SampleSize nil counts as one inspected unit.
type QualityCheck struct {
	ID          uint32             `json:"id"`
	EquipmentID uint32             `json:"equipmentId"`
	Status      QualityCheckStatus `json:"status"`
	CheckTime   time.Time          `json:"checkTime"`
	SampleSize  *int               `json:"sampleSize,omitempty"`
}

// CalculationType marks how an OEE calculation was triggered
const (
	CalculationTypeRealTime  string = "REAL_TIME"
	CalculationTypeScheduled string = "SCHEDULED"
)

// OeeCalculation is one computed OEE record for one equipment unit over one
// period. Records are append-only history and never mutated after creation.
//
// Invariant: OeePercentage == AvailabilityPercentage * min(PerformancePercentage, 100)
// * QualityPercentage / 10000, rounded half-up to 2 decimals. The stored
// PerformancePercentage is deliberately left uncapped so that better-than-ideal
// output is visible.
type OeeCalculation struct {
	ID                      uint32    `json:"id"`
	EquipmentID             uint32    `json:"equipmentId"`
	CalculationPeriodStart  time.Time `json:"calculationPeriodStart"`
	CalculationPeriodEnd    time.Time `json:"calculationPeriodEnd"`
	PlannedProductionTime   float64   `json:"plannedProductionTime"` // minutes
	Downtime                float64   `json:"downtime"`              // minutes
	OperatingTime           float64   `json:"operatingTime"`         // minutes
	AvailabilityPercentage  float64   `json:"availabilityPercentage"`
	IdealCycleTime          float64   `json:"idealCycleTime"` // seconds per unit
	TotalPiecesProduced     int       `json:"totalPiecesProduced"`
	IdealProductionQuantity int       `json:"idealProductionQuantity"`
	PerformancePercentage   float64   `json:"performancePercentage"`
	GoodPieces              int       `json:"goodPieces"`
	RejectedPieces          int       `json:"rejectedPieces"`
	QualityPercentage       float64   `json:"qualityPercentage"`
	OeePercentage           float64   `json:"oeePercentage"`
	TargetOeePercentage     *float64  `json:"targetOeePercentage,omitempty"`
	VarianceFromTarget      *float64  `json:"varianceFromTarget,omitempty"`
	CalculationType         string    `json:"calculationType"`
	CalculatedAt            time.Time `json:"calculatedAt"`
}

// OeeTarget is a time-bounded target/benchmark record for one equipment unit.
// At most one active target matches a given (equipment, date).
type OeeTarget struct {
	ID                   uint32     `json:"id"`
	EquipmentID          uint32     `json:"equipmentId"`
	TargetAvailability   float64    `json:"targetAvailability"`
	TargetPerformance    float64    `json:"targetPerformance"`
	TargetQuality        float64    `json:"targetQuality"`
	TargetOee            float64    `json:"targetOee"`
	IndustryBenchmarkOee *float64   `json:"industryBenchmarkOee,omitempty"`
	WorldClassOee        float64    `json:"worldClassOee"`
	CompanyAverageOee    *float64   `json:"companyAverageOee,omitempty"`
	EffectiveFrom        time.Time  `json:"effectiveFrom"`
	EffectiveTo          *time.Time `json:"effectiveTo,omitempty"` // nil = open-ended
	IsActive             bool       `json:"isActive"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// TrendDirection classifies how OEE developed over a trend period
const (
	TrendImproving string = "IMPROVING"
	TrendDeclining string = "DECLINING"
	TrendStable    string = "STABLE"
)

// TrendPeriod labels for OeeTrend records
const (
	TrendPeriodDaily   string = "DAILY"
	TrendPeriodWeekly  string = "WEEKLY"
	TrendPeriodMonthly string = "MONTHLY"
)

// OeeTrend is the aggregated view over all OEE calculations of one equipment
// unit within a period. Trends are recomputed on schedule and superseded by
// newer records, never edited.
type OeeTrend struct {
	ID                  uint32    `json:"id"`
	EquipmentID         uint32    `json:"equipmentId"`
	TrendPeriod         string    `json:"trendPeriod"`
	PeriodStart         time.Time `json:"periodStart"`
	PeriodEnd           time.Time `json:"periodEnd"`
	AvgOee              float64   `json:"avgOee"`
	AvgAvailability     float64   `json:"avgAvailability"`
	AvgPerformance      float64   `json:"avgPerformance"`
	AvgQuality          float64   `json:"avgQuality"`
	MinOee              float64   `json:"minOee"`
	MaxOee              float64   `json:"maxOee"`
	TotalProductionTime float64   `json:"totalProductionTime"` // minutes
	TotalDowntime       float64   `json:"totalDowntime"`       // minutes
	TotalPiecesProduced int       `json:"totalPiecesProduced"`
	TotalGoodPieces     int       `json:"totalGoodPieces"`
	TrendDirection      string    `json:"trendDirection"`
	TrendPercentage     float64   `json:"trendPercentage"`
	CalculatedAt        time.Time `json:"calculatedAt"`
}

// ChannelResult returns the returnValue and an error code from a goroutine
type ChannelResult struct {
	Err         error
	ReturnValue interface{}
}
