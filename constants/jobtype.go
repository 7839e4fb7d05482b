package constants

import "strings"

type JobType string

const (
	FullTime   JobType = "Full-time"
	PartTime   JobType = "Part-time"
	Contract   JobType = "Contract"
	Remote     JobType = "Remote"
	Hybrid     JobType = "Hybrid"
	Internship JobType = "Internship"
)

var allJobTypes = []JobType{
	FullTime,
	PartTime,
	Contract,
	Remote,
	Hybrid,
	Internship,
}

func JobTypes() []string {
	result := make([]string, len(allJobTypes))
	for i, jt := range allJobTypes {
		result[i] = string(jt)
	}
	return result
}

// CanonicalJobType matches input case-insensitively against the known job types.
func CanonicalJobType(input string) (JobType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}
	// common spellings without the hyphen
	synonyms := map[string]JobType{
		"full time": FullTime,
		"fulltime":  FullTime,
		"part time": PartTime,
		"parttime":  PartTime,
		"intern":    Internship,
	}
	if jt, ok := synonyms[normalized]; ok {
		return jt, true
	}
	for _, jt := range allJobTypes {
		if normalized == strings.ToLower(string(jt)) {
			return jt, true
		}
	}
	return "", false
}
