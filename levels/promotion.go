package levels

// Profile is the subset of a researcher record the rules look at. It decodes
// straight from the users payload the backend returns.
type Profile struct {
	ProjectsCount  int   `json:"projects_count"`
	PapersCount    int   `json:"papers_count"`
	CitationsCount int   `json:"citations_count"`
	CurrentLevel   Level `json:"researcher_level"`
}

// Progress summarizes where a profile stands against the table.
type Progress struct {
	Current   Definition   `json:"current"`
	Next      *Definition  `json:"next"`
	Remaining Requirements `json:"remaining"`
	Eligible  bool         `json:"eligible"`
	Target    Level        `json:"target"`
}

// normalized clamps negative counters to zero and resolves the level.
func (p Profile) normalized() Profile {
	p.ProjectsCount = max(p.ProjectsCount, 0)
	p.PapersCount = max(p.PapersCount, 0)
	p.CitationsCount = max(p.CitationsCount, 0)
	p.CurrentLevel, _ = Parse(string(p.CurrentLevel))
	return p
}

// Meets reports whether the counters satisfy every threshold in req.
func (p Profile) Meets(req Requirements) bool {
	p = p.normalized()
	return p.ProjectsCount >= req.MinProjects &&
		p.PapersCount >= req.MinPapers &&
		p.CitationsCount >= req.MinCitations
}

// IsEligibleForPromotion reports whether the profile satisfies the next
// level's thresholds. Always false at diamond.
func IsEligibleForPromotion(p Profile) bool {
	next, ok := Next(p.CurrentLevel)
	if !ok {
		return false
	}
	return p.Meets(next.Requirements)
}

// PromotionTarget returns the highest level reachable from the current one
// by walking upward while each next level's thresholds hold. The result is
// never below the current level.
func PromotionTarget(p Profile) Level {
	p = p.normalized()
	for IsEligibleForPromotion(p) {
		next, _ := Next(p.CurrentLevel)
		p.CurrentLevel = next.Level
	}
	return p.CurrentLevel
}

// Evaluate computes the current and next definitions, the counts still
// missing for the next level, and the promotion target.
func Evaluate(p Profile) Progress {
	p = p.normalized()
	out := Progress{
		Current:  Describe(p.CurrentLevel),
		Eligible: IsEligibleForPromotion(p),
		Target:   PromotionTarget(p),
	}
	if next, ok := Next(p.CurrentLevel); ok {
		out.Next = &next
		out.Remaining = Requirements{
			MinProjects:  max(next.Requirements.MinProjects-p.ProjectsCount, 0),
			MinPapers:    max(next.Requirements.MinPapers-p.PapersCount, 0),
			MinCitations: max(next.Requirements.MinCitations-p.CitationsCount, 0),
		}
	}
	return out
}
