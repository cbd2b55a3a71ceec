package trust

// Level is the ordinal trust tier, 0 through 4
type Level int

const (
	LevelBasic Level = iota
	LevelEmailVerified
	LevelPhotoVerified
	LevelIDVerified
	LevelTrustedMember

	MaxLevel = LevelTrustedMember
)

// Requirement is one verification a level depends on
type Requirement string

const (
	RequirementEmail      Requirement = "email_verified"
	RequirementPhoto      Requirement = "photo_verified"
	RequirementID         Requirement = "id_verified"
	RequirementBehavioral Requirement = "behavioral_trust"
)

// Features gated by trust level
const (
	FeatureBrowseProfiles    = "browse_profiles"
	FeatureSendMessages      = "send_messages"
	FeatureVideoChat         = "video_chat"
	FeatureBoostPriority     = "boost_priority"
	FeatureFeaturedPlacement = "featured_placement"
)

type levelInfo struct {
	Name         string
	Description  string
	Requirements []Requirement
	Capabilities []string
}

var levels = [...]levelInfo{
	LevelBasic: {
		Name:         "Basic",
		Description:  "Basic access with limited features",
		Capabilities: []string{FeatureBrowseProfiles},
	},
	LevelEmailVerified: {
		Name:         "Email Verified",
		Description:  "Email verified users can chat",
		Requirements: []Requirement{RequirementEmail},
		Capabilities: []string{FeatureBrowseProfiles, FeatureSendMessages},
	},
	LevelPhotoVerified: {
		Name:         "Photo Verified",
		Description:  "Photo verified users can video chat",
		Requirements: []Requirement{RequirementEmail, RequirementPhoto},
		Capabilities: []string{FeatureBrowseProfiles, FeatureSendMessages, FeatureVideoChat},
	},
	LevelIDVerified: {
		Name:         "ID Verified",
		Description:  "ID verified users get priority matching",
		Requirements: []Requirement{RequirementEmail, RequirementPhoto, RequirementID},
		Capabilities: []string{FeatureBrowseProfiles, FeatureSendMessages, FeatureVideoChat, FeatureBoostPriority},
	},
	LevelTrustedMember: {
		Name:         "Trusted Member",
		Description:  "Trusted members get featured placement and premium features",
		Requirements: []Requirement{RequirementEmail, RequirementPhoto, RequirementID, RequirementBehavioral},
		Capabilities: []string{FeatureBrowseProfiles, FeatureSendMessages, FeatureVideoChat, FeatureBoostPriority, FeatureFeaturedPlacement},
	},
}

// Valid reports whether l is a defined level
func (l Level) Valid() bool {
	return l >= LevelBasic && l <= MaxLevel
}

func (l Level) Name() string {
	if !l.Valid() {
		return ""
	}
	return levels[l].Name
}

func (l Level) Description() string {
	if !l.Valid() {
		return ""
	}
	return levels[l].Description
}

func (l Level) Capabilities() []string {
	if !l.Valid() {
		return nil
	}
	return append([]string(nil), levels[l].Capabilities...)
}

// Flags are the verification facts a level is assessed from
type Flags struct {
	EmailVerified   bool `json:"email_verified"`
	PhotoVerified   bool `json:"photo_verified"`
	IDVerified      bool `json:"id_verified"`
	BehavioralTrust bool `json:"behavioral_trust"`
}

func (f Flags) Has(r Requirement) bool {
	switch r {
	case RequirementEmail:
		return f.EmailVerified
	case RequirementPhoto:
		return f.PhotoVerified
	case RequirementID:
		return f.IDVerified
	case RequirementBehavioral:
		return f.BehavioralTrust
	default:
		return false
	}
}

// Assess returns the highest level whose requirements all hold.
// Levels are climbed in order so a missing requirement stops the climb.
func Assess(f Flags) Level {
	level := LevelBasic
	for l := LevelEmailVerified; l <= MaxLevel; l++ {
		for _, r := range levels[l].Requirements {
			if !f.Has(r) {
				return level
			}
		}
		level = l
	}
	return level
}

// RequiredVerifications lists the requirements of every level above current
// up to target, de-duplicated in level order
func RequiredVerifications(current, target Level) []Requirement {
	required := make([]Requirement, 0)
	if target <= current || !target.Valid() {
		return required
	}
	if current < LevelBasic {
		current = LevelBasic
	}

	seen := make(map[Requirement]bool)
	for l := current + 1; l <= target; l++ {
		for _, r := range levels[l].Requirements {
			if !seen[r] {
				seen[r] = true
				required = append(required, r)
			}
		}
	}
	return required
}

// CanAccess reports whether level unlocks feature
func CanAccess(level Level, feature string) bool {
	if !level.Valid() {
		return false
	}
	for _, c := range levels[level].Capabilities {
		if c == feature {
			return true
		}
	}
	return false
}

// Verification types and the level each one contributes to
const (
	VerificationEmail           = "email"
	VerificationPhoto           = "photo"
	VerificationVideo           = "video"
	VerificationIDDocument      = "id_document"
	VerificationBackgroundCheck = "background_check"
)

var VerificationTypes = map[string]Level{
	VerificationEmail:           LevelEmailVerified,
	VerificationPhoto:           LevelPhotoVerified,
	VerificationVideo:           LevelPhotoVerified,
	VerificationIDDocument:      LevelIDVerified,
	VerificationBackgroundCheck: LevelTrustedMember,
}
