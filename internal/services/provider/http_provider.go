package provider

import (
	"context"
	"fmt"

	"AssetCast/internal/domain/models"
	domsvc "AssetCast/internal/domain/service"
)

// HTTPModelProvider drives one model variant on the model service. Frames are
// sent as parallel arrays; alignment guarantees they contain no missing cells
// by the time they reach this layer.
type HTTPModelProvider struct {
	*httpBase
	kind   models.ModelKind
	params interface{} // variant payload forwarded verbatim to the service
}

type framePayload struct {
	Times   []int64              `json:"times"`
	Columns map[string][]float64 `json:"columns"`
}

func encodeFrame(f *models.Frame) *framePayload {
	if f == nil {
		return nil
	}
	return &framePayload{Times: f.Times, Columns: f.Values}
}

type trainRequest struct {
	Kind   models.ModelKind `json:"kind"`
	Params interface{}      `json:"params,omitempty"`
	Data   *framePayload    `json:"data"`
}

type trainResponse struct {
	ModelID string            `json:"model_id"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func (p *HTTPModelProvider) Train(ctx context.Context, data *models.Frame) (*domsvc.TrainedModel, error) {
	var resp trainResponse
	err := p.postJSON(ctx, fmt.Sprintf("/models/%s/train", p.kind), trainRequest{
		Kind:   p.kind,
		Params: p.params,
		Data:   encodeFrame(data),
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ModelID == "" {
		return nil, fmt.Errorf("model service returned no model id")
	}
	return &domsvc.TrainedModel{ID: resp.ModelID, Kind: p.kind, Meta: resp.Meta}, nil
}

type forecastRequest struct {
	Kind       models.ModelKind `json:"kind"`
	Params     interface{}      `json:"params,omitempty"`
	Timestamps []int64          `json:"timestamps"`
	Regressors *framePayload    `json:"regressors,omitempty"`
}

type forecastResponse struct {
	Points []models.Datapoint `json:"points"`
}

func (p *HTTPModelProvider) Forecast(ctx context.Context, timestamps []int64, regressors *models.Frame) ([]models.Datapoint, error) {
	var resp forecastResponse
	err := p.postJSONWithRetry(ctx, fmt.Sprintf("/models/%s/forecast", p.kind), forecastRequest{
		Kind:       p.kind,
		Params:     p.params,
		Timestamps: timestamps,
		Regressors: encodeFrame(regressors),
	}, &resp, 2)
	if err != nil {
		return nil, err
	}
	return resp.Points, nil
}

func (p *HTTPModelProvider) Save(ctx context.Context, m *domsvc.TrainedModel) error {
	return p.postJSON(ctx, fmt.Sprintf("/models/%s/save", m.ID), m, nil)
}

func (p *HTTPModelProvider) Load(ctx context.Context, id string) (*domsvc.TrainedModel, error) {
	var m domsvc.TrainedModel
	if err := p.getJSON(ctx, fmt.Sprintf("/models/%s", id), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

var _ domsvc.ModelProvider = (*HTTPModelProvider)(nil)
