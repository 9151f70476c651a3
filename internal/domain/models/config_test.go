package models

import "testing"

func prophetCfg() ModelConfig {
	return ModelConfig{
		ID:      "cfg-1",
		Realm:   "master",
		Name:    "room temp",
		Enabled: true,
		Kind:    ModelKindProphet,
		Target:  FeatureRef{AssetID: "a1", Attribute: "temperature", CutoffMs: 1000},
		Prophet: &ProphetParams{
			ExtraRegressors: []FeatureRef{{AssetID: "a2", Attribute: "humidity"}},
		},
		TrainingInterval:  "PT1H",
		ForecastInterval:  "PT30M",
		ForecastHorizon:   24,
		ForecastFrequency: "1h",
	}
}

func TestRegressorsNormalization(t *testing.T) {
	p := prophetCfg()
	regs := p.Regressors()
	if len(regs) != 1 || regs[0].Attribute != "humidity" {
		t.Fatalf("prophet regressors = %+v", regs)
	}

	x := p
	x.Kind = ModelKindXGBoost
	x.Prophet = nil
	x.XGBoost = &XGBoostParams{Covariates: []FeatureRef{{AssetID: "a3", Attribute: "co2"}}}
	regs = x.Regressors()
	if len(regs) != 1 || regs[0].Attribute != "co2" {
		t.Fatalf("xgboost covariates = %+v", regs)
	}

	bare := p
	bare.Prophet = &ProphetParams{}
	if got := bare.Regressors(); len(got) != 0 {
		t.Fatalf("expected no regressors, got %+v", got)
	}
}

func TestModelConfigEqual(t *testing.T) {
	a := prophetCfg()
	b := prophetCfg()
	if !a.Equal(b) {
		t.Fatalf("identical configs must compare equal")
	}
	b.TrainingInterval = "PT2H"
	if a.Equal(b) {
		t.Fatalf("interval change must break equality")
	}
	c := prophetCfg()
	c.Prophet.ExtraRegressors[0].Attribute = "wind"
	if a.Equal(c) {
		t.Fatalf("nested regressor change must break equality")
	}
}
