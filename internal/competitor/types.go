package competitor

// #region phases

// Phase is a competitor's position in its reaction state machine.
type Phase string

const (
	PhaseObserving Phase = "observing"
	PhaseDeciding  Phase = "deciding"
	PhaseReacting  Phase = "reacting"
)

// validTransitions defines the legal phase transitions.
var validTransitions = map[Phase]map[Phase]bool{
	PhaseObserving: {PhaseDeciding: true},
	PhaseDeciding:  {PhaseReacting: true, PhaseObserving: true}, // deciding→observing is a budget no-op
	PhaseReacting:  {PhaseObserving: true, PhaseDeciding: true}, // reacting→deciding only with spare budget
}

// IsValidTransition checks if a phase transition is legal.
func IsValidTransition(from, to Phase) bool {
	return validTransitions[from][to]
}

// #endregion

// #region reactions

// Reaction identifies a strategic response from the repertoire.
type Reaction string

const (
	ReactionPriceMatch    Reaction = "price_match"
	ReactionFeature       Reaction = "feature_response"
	ReactionConsolidation Reaction = "market_consolidation"
)

// Personality shapes reaction delay and repertoire preference.
type Personality string

const (
	PersonalityAggressive Personality = "aggressive"
	PersonalityDefensive  Personality = "defensive"
	PersonalityFollower   Personality = "follower"
)

// #endregion

// #region config

// CompetitorSpec configures one competitor agent.
type CompetitorSpec struct {
	Name        string      `yaml:"name"`
	Personality Personality `yaml:"personality"`

	// ResourceBudget caps concurrent reactions; a full budget is the model's
	// backpressure mechanism.
	ResourceBudget int `yaml:"resource_budget"`

	// Intelligence in [0,1]; lower values add more noise to the observed
	// market signal.
	Intelligence float64 `yaml:"intelligence"`

	// MeanDelay is the average periods between observing and deciding.
	MeanDelay float64 `yaml:"mean_delay"`

	InitialShare float64 `yaml:"initial_share"`
}

// Config holds tunables for the competitor reaction model.
type Config struct {
	Competitors []CompetitorSpec `yaml:"competitors"`

	OurInitialShare float64 `yaml:"our_initial_share"`

	// TriggerThreshold is the observed-signal level that moves a competitor
	// out of observing.
	TriggerThreshold float64 `yaml:"trigger_threshold"`

	// ReactionDuration is how many periods a reaction stays active.
	ReactionDuration int `yaml:"reaction_duration"`

	// ShareShift is the per-period share a consolidating competitor pulls.
	ShareShift float64 `yaml:"share_shift"`

	// ShareEpsilon is the documented tolerance for the shares-sum-to-one
	// invariant.
	ShareEpsilon float64 `yaml:"share_epsilon"`
}

// DefaultConfig returns the built-in competitor tunables.
func DefaultConfig() Config {
	return Config{
		Competitors: []CompetitorSpec{
			{Name: "incumbent", Personality: PersonalityDefensive, ResourceBudget: 2, Intelligence: 0.8, MeanDelay: 2, InitialShare: 0.45},
			{Name: "challenger", Personality: PersonalityAggressive, ResourceBudget: 1, Intelligence: 0.6, MeanDelay: 1, InitialShare: 0.25},
			{Name: "niche", Personality: PersonalityFollower, ResourceBudget: 1, Intelligence: 0.4, MeanDelay: 3, InitialShare: 0.15},
		},
		OurInitialShare:  0.15,
		TriggerThreshold: 0.08,
		ReactionDuration: 2,
		ShareShift:       0.01,
		ShareEpsilon:     1e-9,
	}
}

// #endregion

// #region agent

// pendingReaction is a scheduled decision point.
type pendingReaction struct {
	triggerPeriod int
}

// activeReaction is an in-flight reaction occupying budget.
type activeReaction struct {
	reaction Reaction
	until    int // last period the reaction is active
}

// Agent is one competitor's mutable state, owned by the model.
type Agent struct {
	spec    CompetitorSpec
	phase   Phase
	pending []pendingReaction
	active  []activeReaction
}

// Phase returns the agent's current state-machine phase.
func (a *Agent) Phase() Phase { return a.phase }

// #endregion
