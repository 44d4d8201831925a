package client

import (
	"fmt"
	"strconv"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/jaevor/go-nanoid"
)

const MaxReferenceLength = domain.MaxReferenceLength

type ReferenceGenerator struct {
	prefix string
	random func() string
	now    func() time.Time
}

func NewReferenceGenerator(prefix string) (*ReferenceGenerator, error) {
	random, err := nanoid.CustomASCII("0123456789ABCDEF", 4)
	if err != nil {
		return nil, fmt.Errorf("init reference generator: %w", err)
	}
	return &ReferenceGenerator{prefix: prefix, random: random, now: time.Now}, nil
}

// Generate builds prefix + last 8 digits of the unix millisecond clock +
// 4 random hex characters, cut to MaxReferenceLength.
func (g *ReferenceGenerator) Generate() string {
	millis := strconv.FormatInt(g.now().UnixMilli(), 10)
	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}
	ref := g.prefix + millis + g.random()
	if len(ref) > MaxReferenceLength {
		ref = ref[:MaxReferenceLength]
	}
	return ref
}
