package lookup

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/oakwood-commons/prodlookup/pkg/loader"
)

var sampleRecords = []loader.Record{
	{"Profil seriya": "ALT-60", "Mahsulot turi": "Rama valik", "SAP kod": float64(100200), "Norma": "1.2"},
	{"Profil seriya": "KRS-70", "Mahsulot turi": "Stvorka", "SAP kod": "100300"},
	{"Profil seriya": "alt-70", "Mahsulot turi": "Impost", "SAP kod": "200100", "Norma": nil},
	{"Профиль": "Оконный", "Группа": "ПВХ"},
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		queries []Query
		want    []int
	}{
		{name: "no queries", queries: nil, want: []int{0, 1, 2, 3}},
		{name: "all empty", queries: []Query{{Key: "Profil seriya"}, {Key: "SAP kod", Value: "   "}}, want: []int{0, 1, 2, 3}},
		{name: "case insensitive", queries: []Query{{Key: "Profil seriya", Value: "ALT"}}, want: []int{0, 2}},
		{name: "trimmed", queries: []Query{{Key: "Profil seriya", Value: "  krs "}}, want: []int{1}},
		{name: "numbers are matched as text", queries: []Query{{Key: "SAP kod", Value: "1002"}}, want: []int{0}},
		{name: "and across fields", queries: []Query{{Key: "Profil seriya", Value: "alt"}, {Key: "Mahsulot turi", Value: "imp"}}, want: []int{2}},
		{name: "missing key is empty", queries: []Query{{Key: "Norma", Value: "1"}}, want: []int{0}},
		{name: "cyrillic", queries: []Query{{Key: "Группа", Value: "пвх"}}, want: []int{3}},
		{name: "no match", queries: []Query{{Key: "SAP kod", Value: "999"}}, want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(sampleRecords, tt.queries)
			want := make([]loader.Record, 0, len(tt.want))
			for _, i := range tt.want {
				want = append(want, sampleRecords[i])
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestFilterNeverNil(t *testing.T) {
	assert.NotNil(t, Filter(nil, nil))
	assert.NotNil(t, Filter(sampleRecords, []Query{{Key: "SAP kod", Value: "nope"}}))
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches(sampleRecords[0], []Query{{Key: "Mahsulot turi", Value: "VALIK"}}))
	assert.False(t, Matches(sampleRecords[1], []Query{{Key: "Mahsulot turi", Value: "valik"}}))
}

var alphabet = []string{"a", "B", "c", "ж", "Ж", "1", " ", "-"}

func randomWord(r *rand.Rand, max int) string {
	n := r.IntN(max + 1)
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString(alphabet[r.IntN(len(alphabet))])
	}
	return sb.String()
}

// reference is the predicate written out longhand.
func reference(records []loader.Record, queries []Query) []loader.Record {
	out := []loader.Record{}
	for _, r := range records {
		ok := true
		for _, q := range queries {
			needle := strings.ToLower(strings.TrimSpace(q.Value))
			if needle == "" {
				continue
			}
			if !strings.Contains(strings.ToLower(r.String(q.Key)), needle) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

func TestFilterMatchesPredicate(t *testing.T) {
	keys := []string{"Profil seriya", "Mahsulot turi", "SAP kod"}
	r := rand.New(rand.NewPCG(7, 42))

	for iter := 0; iter < 500; iter++ {
		records := make([]loader.Record, r.IntN(30))
		for i := range records {
			rec := loader.Record{}
			for _, k := range keys {
				if r.IntN(5) > 0 {
					rec[k] = randomWord(r, 6)
				}
			}
			records[i] = rec
		}
		queries := make([]Query, 0, len(keys))
		for _, k := range keys {
			queries = append(queries, Query{Key: k, Value: randomWord(r, 2)})
		}

		got := Filter(records, queries)
		if diff := cmp.Diff(reference(records, queries), got); diff != "" {
			t.Fatalf("iteration %d: filter mismatch (-want +got):\n%s", iter, diff)
		}
		again := Filter(got, queries)
		if diff := cmp.Diff(got, again); diff != "" {
			t.Fatalf("iteration %d: filter is not idempotent (-first +second):\n%s", iter, diff)
		}
	}
}
