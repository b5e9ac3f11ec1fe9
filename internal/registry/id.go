package registry

import "math/rand"

// idAlphabet is the closed set of symbols group IDs are drawn from: A-Z and 1-9, explicitly excluding O and 0 to
// avoid human transcription errors (spec.md §3, §9).
const idAlphabet = "ABCDEFGHIJKLMNPQRSTUVWXYZ123456789"

// idLength is the fixed length of a group ID.
const idLength = 8

// maxIDGenerationAttempts bounds the rejection-sampling retry loop in generateID. With 34^8 possible IDs, a
// collision against any realistic live set is effectively impossible; this bound only guards against a
// pathologically exhausted namespace (spec.md §4.C: "astronomically unlikely, untested in practice").
const maxIDGenerationAttempts = 100

// idGenerator draws random group IDs for CreateGroup.
//
// The approach mirrors internal/randmember.Picker's discipline of drawing unique values cheaply under retry, adapted
// here from picking unique members out of a slice to picking unique symbols out of the ID alphabet: generate a
// candidate, and reject it only if it collides with a live ID, rather than maintaining any shuffle state across
// calls.
type idGenerator struct {
	rng *rand.Rand
}

func newIDGenerator() *idGenerator {
	return &idGenerator{rng: rand.New(rand.NewSource(rand.Int63()))} //nolint:gosec // uniformity matters, secrecy does not (spec.md §4.C)
}

// generate returns a fresh group ID not present in live. Returns IDExhaustedError if no unique ID could be found
// within maxIDGenerationAttempts.
func (g *idGenerator) generate(live map[string]*Group) (string, error) {
	buffer := make([]byte, idLength)
	for attempt := 0; attempt < maxIDGenerationAttempts; attempt++ {
		for i := range buffer {
			buffer[i] = idAlphabet[g.rng.Intn(len(idAlphabet))]
		}
		candidate := string(buffer)
		if _, exists := live[candidate]; !exists {
			return candidate, nil
		}
	}
	return "", IDExhaustedError{}
}
