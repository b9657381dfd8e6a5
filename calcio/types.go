// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

// Package calcio is the boundary codec: it decodes textual
// structured input (JSON, with unknown fields ignored) into calcpipe's
// in-memory types, validates it (rejecting non-finite numbers and unknown
// slots before the pipeline ever runs), and encodes calcpipe.Output back
// out to the wire shape. The codec is the one place that
// assumes a transport encoding; nothing upstream of it does.
package calcio

// WireAffix is one item modifier as it crosses the wire.
type WireAffix struct {
	ID           string             `json:"id"`
	Group        string             `json:"group"`
	Value        float64            `json:"value"`
	Stats        map[string]float64 `json:"stats"`
	Tags         []string           `json:"tags"`
	Requirements []string           `json:"requirements"`
	IsLocal      bool               `json:"is_local"`
}

// WireItem is one piece of equipment as it crosses the wire.
type WireItem struct {
	ID                string             `json:"id"`
	Slot              string             `json:"slot"`
	IsTwoHanded       bool               `json:"is_two_handed"`
	BaseImplicitStats map[string]float64 `json:"base_implicit_stats"`
	ImplicitStats     map[string]float64 `json:"implicit_stats"`
	Affixes           []WireAffix        `json:"affixes"`
	Tags              []string           `json:"tags"`
	IsUnique          bool               `json:"is_unique"`
	IsCorrupted       bool               `json:"is_corrupted"`
}

// WireScalingRule is one piecewise level-scaling interval.
type WireScalingRule struct {
	Start    int     `json:"level_start"`
	End      int     `json:"level_end"`
	PerLevel float64 `json:"per_level"`
}

// WireSkill is an active skill, support, or aura as it crosses the wire.
type WireSkill struct {
	ID            string             `json:"id"`
	Kind          string             `json:"kind"`
	IsAttack      bool               `json:"is_attack"`
	Level         int                `json:"level"`
	BaseDamage    map[string]float64 `json:"base_damage"`
	BaseTime      float64            `json:"base_time"`
	Cooldown      float64            `json:"cooldown"`
	Effectiveness float64            `json:"effectiveness"`
	Tags          []string           `json:"tags"`
	Stats         map[string]float64 `json:"stats"`
	InjectedTags  []string           `json:"injected_tags"`
	LevelData     []WireLevelData    `json:"level_data"`
	ScalingRules  []WireScalingRule  `json:"scaling_rules"`
}

// WireLevelData is one exact per-level damage table entry.
type WireLevelData struct {
	Level         int                `json:"level"`
	BaseDamage    map[string]float64 `json:"base_damage"`
	Effectiveness float64            `json:"effectiveness"`
}

// WirePreviewSlot lets a caller ask "what if I equipped this instead".
type WirePreviewSlot struct {
	Slot string   `json:"slot_type"`
	Item WireItem `json:"item"`
}

// WireMechanicDefinition is the static shape of one stackable mechanic.
type WireMechanicDefinition struct {
	ID                 string             `json:"id"`
	Category           string             `json:"category"`
	TagKey             string             `json:"tag_key"`
	DefaultMaxStacks   uint32             `json:"default_max_stacks"`
	BaseEffectPerStack map[string]float64 `json:"base_effect_per_stack"`
}

// WireMechanicState is the current stack state of one mechanic.
type WireMechanicState struct {
	ID            string `json:"id"`
	CurrentStacks uint32 `json:"current_stacks"`
	MaxStacks     uint32 `json:"max_stacks"`
	IsActive      bool   `json:"is_active"`
}

// WireTargetConfig is the enemy/target profile as it crosses the wire.
type WireTargetConfig struct {
	Level           int                `json:"level"`
	DefenseConstant float64            `json:"defense_constant"`
	Resistances     map[string]float64 `json:"resistances"`
	GenericDR       float64            `json:"generic_dr"`
	Armor           int                `json:"armor"`
	Evasion         int                `json:"evasion"`
}

// CalculatorInput is the calculator-input wire shape, decoded by
// DecodeInput into a calcpipe.Input.
type CalculatorInput struct {
	ContextFlags        map[string]bool          `json:"context_flags"`
	ContextValues       map[string]float64       `json:"context_values"`
	TargetConfig        WireTargetConfig         `json:"target_config"`
	Items               []WireItem               `json:"items"`
	ActiveSkill         WireSkill                `json:"active_skill"`
	SupportSkills       []WireSkill              `json:"support_skills"`
	GlobalOverrides     map[string]float64       `json:"global_overrides"`
	PreviewSlot         *WirePreviewSlot         `json:"preview_slot,omitempty"`
	MechanicStates      []WireMechanicState      `json:"mechanic_states"`
	MechanicDefinitions []WireMechanicDefinition `json:"mechanic_definitions"`
}

// EhpSeries mirrors calcpipe.EhpSeries on the wire.
type EhpSeries struct {
	Physical  float64 `json:"physical"`
	Fire      float64 `json:"fire"`
	Cold      float64 `json:"cold"`
	Lightning float64 `json:"lightning"`
	Chaos     float64 `json:"chaos"`
}

// DamageWithHistory mirrors calcpipe.DamageWithHistory on the wire.
type DamageWithHistory struct {
	Damage      float64  `json:"damage"`
	HistoryTags []string `json:"history_tags"`
}

// MultiplierSource mirrors calcpipe.MultiplierSource on the wire.
type MultiplierSource struct {
	Source  string  `json:"source"`
	Value   float64 `json:"value"`
	StatKey string  `json:"stat_key"`
}

// Multipliers is the flattened ten-zone breakdown
// (damage_breakdown.multipliers): one float per named zone plus a
// zone_sources map keyed by the same zone names.
type Multipliers struct {
	BaseDamageZone    float64                       `json:"base_damage_zone"`
	IncreasedZone     float64                       `json:"increased_zone"`
	MoreZone          float64                       `json:"more_zone"`
	CritZone          float64                       `json:"crit_zone"`
	SpeedZone         float64                       `json:"speed_zone"`
	HitZone           float64                       `json:"hit_zone"`
	DefenseZone       float64                       `json:"defense_zone"`
	ResistanceZone    float64                       `json:"resistance_zone"`
	VulnerabilityZone float64                       `json:"vulnerability_zone"`
	MechanicsZone     float64                       `json:"mechanics_zone"`
	ZoneSources       map[string][]MultiplierSource `json:"zone_sources"`
}

// DamageBreakdown mirrors calcpipe.DamageBreakdown on the wire.
type DamageBreakdown struct {
	ByType          map[string]float64           `json:"by_type"`
	BaseDamage      float64                       `json:"base_damage"`
	TotalIncreased  float64                       `json:"total_increased"`
	TotalMore       float64                       `json:"total_more"`
	AfterConversion map[string]DamageWithHistory  `json:"after_conversion"`
	Multipliers     Multipliers                   `json:"multipliers"`
}

// DebugTraceEntry mirrors tracebus.TraceEvent on the wire.
type DebugTraceEntry struct {
	Phase       string             `json:"phase"`
	Description string             `json:"description"`
	Values      map[string]float64 `json:"values"`
	MatchedTags []string           `json:"matched_tags"`
}

// CalculatorOutput is the calculator-output wire shape, produced by
// FromPipelineOutput (and EncodeOutput) from a calcpipe.Output. RequestID is stamped fresh on every
// encode so a host issuing several calls (e.g. one per preview candidate)
// can correlate each response back to the request that produced it in its
// own logs, without the engine needing to know anything about the host's
// request model.
type CalculatorOutput struct {
	RequestID       string            `json:"request_id"`
	DPSTheoretical  float64           `json:"dps_theoretical"`
	DPSEffective    float64           `json:"dps_effective"`
	HitDamage       float64           `json:"hit_damage"`
	Rate            float64           `json:"rate"`
	CritChance      float64           `json:"crit_chance"`
	CritMultiplier  float64           `json:"crit_multiplier"`
	HitChance       float64           `json:"hit_chance"`
	EhpSeries       EhpSeries         `json:"ehp_series"`
	DamageBreakdown DamageBreakdown   `json:"damage_breakdown"`
	DebugTrace      []DebugTraceEntry `json:"debug_trace"`
}
