package selection

// Level is a selection rule. Lower levels are stricter and tried first.
type Level int

const (
	// LevelStrict honors both cooldowns and same-tick duplicate avoidance
	LevelStrict Level = iota + 1
	// LevelRelaxGlobal ignores the global cooldown
	LevelRelaxGlobal
	// LevelRelaxOutput ignores the per-output cooldown
	LevelRelaxOutput
	// LevelRelaxCooldowns ignores both cooldowns
	LevelRelaxCooldowns
	// LevelAny accepts any path
	LevelAny
)

// Levels lists every level in evaluation order
var Levels = []Level{LevelStrict, LevelRelaxGlobal, LevelRelaxOutput, LevelRelaxCooldowns, LevelAny}

func (l Level) String() string {
	switch l {
	case LevelStrict:
		return "strict"
	case LevelRelaxGlobal:
		return "relax-global"
	case LevelRelaxOutput:
		return "relax-output"
	case LevelRelaxCooldowns:
		return "relax-cooldowns"
	case LevelAny:
		return "any"
	default:
		return "unknown"
	}
}

// checks is what a level enforces
type checks struct {
	outputCooldown bool
	globalCooldown bool
	tickDuplicates bool
}

var levelChecks = map[Level]checks{
	LevelStrict:         {outputCooldown: true, globalCooldown: true, tickDuplicates: true},
	LevelRelaxGlobal:    {outputCooldown: true, tickDuplicates: true},
	LevelRelaxOutput:    {globalCooldown: true, tickDuplicates: true},
	LevelRelaxCooldowns: {tickDuplicates: true},
	LevelAny:            {},
}

// constraints is the per-output view the levels are evaluated against
type constraints struct {
	bannedOutput   map[string]struct{}
	bannedGlobal   map[string]struct{}
	usedThisTick   map[string]struct{}
	avoidTickDupes bool
}

// allows reports whether path satisfies the level under c
func (l Level) allows(path string, c constraints) bool {
	chk := levelChecks[l]
	if chk.outputCooldown && has(c.bannedOutput, path) {
		return false
	}
	if chk.globalCooldown && has(c.bannedGlobal, path) {
		return false
	}
	if chk.tickDuplicates && c.avoidTickDupes && has(c.usedThisTick, path) {
		return false
	}
	return true
}

func has(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
