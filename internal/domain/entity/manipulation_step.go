package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de etapa del flujo de manipulación.
const (
	StepTypeWeighing   = "WEIGHING"
	StepTypeMixing     = "MIXING"
	StepTypePackaging  = "PACKAGING"
	StepTypeLabeling   = "LABELING"
	StepTypeFinalCheck = "FINAL_CHECK"
)

// ManipulationStep es el registro append-only de una etapa ejecutada para una orden.
// Una etapa repetida genera un registro nuevo, nunca se edita el anterior.
// PassedIntermediateCheck solo aplica a WEIGHING y FINAL_CHECK (las etapas con
// punto de control); en el resto queda en nil.
type ManipulationStep struct {
	ID                      string
	OrderID                 string
	Type                    string // WEIGHING | MIXING | PACKAGING | LABELING | FINAL_CHECK
	Payload                 StepPayload
	PassedIntermediateCheck *bool
	CheckedBy               string
	Notes                   string
	PerformedBy             string
	CreatedAt               time.Time
}

// StepPayload es el dato específico de cada etapa. Es un conjunto cerrado de variantes
// (una por tipo de etapa): el switch de DecodeStepPayload es exhaustivo y un tipo nuevo
// obliga a tocarlo.
type StepPayload interface {
	StepType() string
}

// ComponentWeighing es la pesada de un componente contra un lote concreto.
type ComponentWeighing struct {
	MaterialID string          `json:"material_id"`
	BatchID    string          `json:"batch_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Notes      string          `json:"notes,omitempty"`
}

// WeighingData datos de la etapa de pesada: componentes pesados y balanza utilizada.
type WeighingData struct {
	Components       []ComponentWeighing `json:"components"`
	ScaleID          string              `json:"scale_id"`
	ScaleCalibration string              `json:"scale_calibration,omitempty"`
}

// MixingData datos de la etapa de mezclado.
type MixingData struct {
	Method       string `json:"method"`
	DurationMin  int    `json:"duration_min"`
	Equipment    string `json:"equipment,omitempty"`
	Observations string `json:"observations,omitempty"`
}

// PackagingData datos de la etapa de envasado.
type PackagingData struct {
	ContainerType string `json:"container_type"`
	UnitsPackaged int    `json:"units_packaged"`
	LotSeal       string `json:"lot_seal,omitempty"`
}

// LabelingData datos de la etapa de etiquetado.
type LabelingData struct {
	LabelsPrinted  int    `json:"labels_printed"`
	LabelReference string `json:"label_reference,omitempty"`
}

// FinalCheckData checklist del control de calidad final del farmacéutico.
type FinalCheckData struct {
	InspectionResult string `json:"inspection_result"`
	AppearanceOK     bool   `json:"appearance_ok"`
	LabelOK          bool   `json:"label_ok"`
	QuantityOK       bool   `json:"quantity_ok"`
	DocumentationOK  bool   `json:"documentation_ok"`
}

func (WeighingData) StepType() string   { return StepTypeWeighing }
func (MixingData) StepType() string     { return StepTypeMixing }
func (PackagingData) StepType() string  { return StepTypePackaging }
func (LabelingData) StepType() string   { return StepTypeLabeling }
func (FinalCheckData) StepType() string { return StepTypeFinalCheck }

// DecodeStepPayload reconstruye el payload tipado desde su forma serializada.
// El switch es exhaustivo sobre los tipos de etapa.
func DecodeStepPayload(stepType string, raw []byte) (StepPayload, error) {
	switch stepType {
	case StepTypeWeighing:
		var p WeighingData
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode weighing payload: %w", err)
		}
		return p, nil
	case StepTypeMixing:
		var p MixingData
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode mixing payload: %w", err)
		}
		return p, nil
	case StepTypePackaging:
		var p PackagingData
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode packaging payload: %w", err)
		}
		return p, nil
	case StepTypeLabeling:
		var p LabelingData
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode labeling payload: %w", err)
		}
		return p, nil
	case StepTypeFinalCheck:
		var p FinalCheckData
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode final check payload: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("tipo de etapa desconocido: %q", stepType)
	}
}
