package keyword

import (
	"fmt"
	"math"
	"testing"

	domkw "github.com/kailas-cloud/serpintel/internal/domain/keyword"
	"github.com/kailas-cloud/serpintel/internal/domain/serp"
)

func payload(pairs ...string) serp.Payload {
	var rs []serp.Result
	for i := 0; i+1 < len(pairs); i += 2 {
		rs = append(rs, serp.ReconstructResult(i/2+1, pairs[i], "https://example.com", "example.com", pairs[i+1]))
	}
	return serp.NewPayload(rs, nil)
}

func TestExtract_RanksByFrequencyThenFirstOccurrence(t *testing.T) {
	main, sec := NewExtractor().Extract("Cat Shirt", payload(
		"Cat Shirt Gift", "",
		"Funny Cat", "",
	))

	if main.Text() != "cat shirt" || main.Relevance() != 1.0 || main.Frequency() != 2 {
		t.Errorf("main = %q rel=%v freq=%d", main.Text(), main.Relevance(), main.Frequency())
	}

	want := []string{"cat", "shirt", "cat shirt gift", "shirt gift", "gift", "funny", "funny cat"}
	got := domkw.Texts(sec)
	if len(got) != len(want) {
		t.Fatalf("secondary = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("secondary[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if math.Abs(sec[0].Relevance()-0.95) > 1e-9 {
		t.Errorf("top relevance = %v, want 0.95", sec[0].Relevance())
	}
	if math.Abs(sec[1].Relevance()-0.8) > 1e-9 {
		t.Errorf("second relevance = %v, want 0.8", sec[1].Relevance())
	}
}

func TestExtract_DropsStopWordsAndShortTokens(t *testing.T) {
	_, sec := NewExtractor().Extract("tee", payload("The tee for a dad", ""))
	for _, k := range sec {
		switch k.Text() {
		case "the", "for", "the tee", "tee for", "a":
			t.Errorf("unexpected keyword %q", k.Text())
		}
	}
	if len(sec) != 1 || sec[0].Text() != "dad" {
		t.Errorf("secondary = %v, want [dad]", domkw.Texts(sec))
	}
}

func TestExtract_AtMostTenAndBelowMain(t *testing.T) {
	var pairs []string
	for i := range 20 {
		pairs = append(pairs, fmt.Sprintf("word%02d graphic tee", i), "")
	}
	main, sec := NewExtractor().Extract("graphic tee", payload(pairs...))
	if len(sec) != 10 {
		t.Fatalf("len(secondary) = %d, want 10", len(sec))
	}
	for _, k := range sec {
		if k.Text() == main.Text() {
			t.Error("secondary contains main keyword")
		}
		if k.Relevance() > main.Relevance() || k.Relevance() < 0.5 || k.Relevance() > 0.95 {
			t.Errorf("relevance %v out of range for %q", k.Relevance(), k.Text())
		}
	}
	for i := 1; i < len(sec); i++ {
		if sec[i-1].Frequency() < sec[i].Frequency() {
			t.Fatalf("not sorted by frequency at %d", i)
		}
	}
}

func TestExtract_MainAbsentFromCorpus(t *testing.T) {
	main, _ := NewExtractor().Extract("the best funny tee ever", payload("Cats", ""))
	if main.Frequency() != 1 {
		t.Errorf("main frequency = %d, want 1 (term itself)", main.Frequency())
	}
}

func TestExtract_EmptyPayload(t *testing.T) {
	main, sec := NewExtractor().Extract("ok", serp.Payload{})
	if main.Text() != "ok" || main.Frequency() != 1 {
		t.Errorf("main = %+v", main)
	}
	if len(sec) != 0 {
		t.Errorf("secondary = %v", domkw.Texts(sec))
	}
}
