package pin

import (
	"math/rand/v2"
	"strings"
	"time"
)

var titleTemplates = map[string][]string{
	"fashion": {
		"Style Inspo You NEED to See",
		"Outfit Ideas That Just Hit Different",
		"Your Next Favorite Look",
		"Fashion Finds You'll Love",
		"This Outfit is Everything",
		"Style Goals Achieved",
		"The Look Everyone's Talking About",
		"Must-Have Pieces for Your Wardrobe",
		"Trending Styles Right Now",
		"Effortlessly Chic Outfit Ideas",
	},
	"minimalist": {
		"Clean & Simple Style",
		"Less is More Fashion",
		"Minimalist Aesthetic",
		"Timeless Simplicity",
		"The Art of Simple Dressing",
	},
	"aesthetic": {
		"This Vibe Though",
		"Aesthetic Goals",
		"The Perfect Aesthetic",
		"Mood Board Inspiration",
		"Curated Aesthetic Finds",
	},
}

var (
	fashionTags = []string{
		"#fashion", "#style", "#ootd", "#outfitinspo", "#fashionista",
		"#styleinspo", "#outfitideas", "#fashionstyle", "#whatiwore",
		"#dailylook", "#fashionblogger", "#streetstyle", "#instafashion",
		"#fashionaddict", "#styleinspiration", "#fashionlovers",
	}
	shoppingTags = []string{
		"#amazonfinds", "#amazonmusthaves", "#amazonfashion",
		"#affordablefashion", "#budgetfashion", "#shoppingaddict",
		"#shopaholic", "#musthave", "#haul", "#newfinds",
	}
	aestheticTags = []string{
		"#aesthetic", "#aestheticoutfit", "#aestheticfashion",
		"#moodboard", "#vibes", "#aesthetically", "#dreamy",
		"#softaesthetic", "#aestheticstyle",
	}
	trendingTags = []string{
		"#trending", "#viral", "#fyp", "#explorepage", "#discover",
		"#trendingnow", "#popular", "#mustsee",
	}
	seasonalTags = map[Season][]string{
		Spring: {"#springfashion", "#springoutfit", "#springvibes", "#springstyle"},
		Summer: {"#summerfashion", "#summeroutfit", "#summervibes", "#summerstyle"},
		Fall:   {"#fallfashion", "#falloutfit", "#fallvibes", "#autumnstyle"},
		Winter: {"#winterfashion", "#winteroutfit", "#wintervibes", "#cozystyle"},
	}
)

var descriptionTemplates = []string{
	"Love this look? Tap the link to shop all pieces! {hashtags}",
	"Obsessed with this outfit! All items linked in bio. {hashtags}",
	"Your new favorite look is just a click away! Shop the full outfit. {hashtags}",
	"Elevate your wardrobe with these stunning pieces. Link in bio! {hashtags}",
	"This outfit is giving everything! Shop the look now. {hashtags}",
	"Style tip: Mix and match these pieces for endless outfit possibilities! {hashtags}",
	"The perfect outfit exists! Find all these pieces linked. {hashtags}",
	"Dreamy outfit alert! Every piece is shoppable. {hashtags}",
	"When your outfit just hits right! Shop the full look. {hashtags}",
	"Curated style picks you'll wear on repeat. Link in bio! {hashtags}",
}

// Hashtag counts used for descriptions and the standalone tag list.
const (
	DescriptionHashtags = 20
	CaptionHashtags     = 25
	trendingPicks       = 3
)

// Season is a meteorological season in the northern hemisphere.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Fall   Season = "fall"
	Winter Season = "winter"
)

// SeasonOf returns the season containing t's month.
func SeasonOf(t time.Time) Season {
	switch m := t.Month(); {
	case m >= time.March && m <= time.May:
		return Spring
	case m >= time.June && m <= time.August:
		return Summer
	case m >= time.September && m <= time.November:
		return Fall
	}
	return Winter
}

// Caption is the text posted alongside a pin.
type Caption struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Hashtags    []string `json:"hashtags"`
}

// Captioner writes randomised pin captions. It is not safe for concurrent use.
type Captioner struct {
	rng *rand.Rand
	now func() time.Time
}

// NewCaptioner returns a Captioner drawing from rng, or from a time-seeded
// source when rng is nil.
func NewCaptioner(rng *rand.Rand) *Captioner {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Captioner{rng: rng, now: time.Now}
}

// Title picks a title for the aesthetic, falling back to the fashion set.
func (c *Captioner) Title(aesthetic string) string {
	templates, ok := titleTemplates[strings.ToLower(aesthetic)]
	if !ok {
		templates = titleTemplates["fashion"]
	}
	return templates[c.rng.IntN(len(templates))]
}

// Hashtags returns up to count distinct tags drawn from the fashion, shopping
// and aesthetic sets, three trending tags and the current season's tags.
func (c *Captioner) Hashtags(count int) []string {
	pool := make([]string, 0, 64)
	pool = append(pool, fashionTags...)
	pool = append(pool, shoppingTags...)
	pool = append(pool, aestheticTags...)
	pool = append(pool, c.pick(trendingTags, trendingPicks)...)
	pool = append(pool, seasonalTags[SeasonOf(c.now())]...)
	return c.pick(unique(pool), count)
}

// Description picks a description template and appends hashtags after a blank line.
func (c *Captioner) Description() string {
	tmpl := descriptionTemplates[c.rng.IntN(len(descriptionTemplates))]
	tags := strings.Join(c.Hashtags(DescriptionHashtags), " ")
	return strings.Replace(tmpl, "{hashtags}", "\n\n"+tags, 1)
}

// Caption returns a title, description and tag list for the aesthetic.
func (c *Captioner) Caption(aesthetic string) Caption {
	if aesthetic == "" {
		aesthetic = "fashion"
	}
	return Caption{
		Title:       c.Title(aesthetic),
		Description: c.Description(),
		Hashtags:    c.Hashtags(CaptionHashtags),
	}
}

// pick returns up to n items of a shuffled copy of items.
func (c *Captioner) pick(items []string, n int) []string {
	shuffled := append([]string(nil), items...)
	c.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n < len(shuffled) {
		shuffled = shuffled[:n]
	}
	return shuffled
}

func unique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, s := range items {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
