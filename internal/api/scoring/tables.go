package scoring

// InterestTags maps a declared user interest to the catalog tags it implies.
var InterestTags = map[string][]string{
	"food":      {"restaurant", "food", "cafe", "local_cuisine"},
	"coffee":    {"coffee", "cafe", "bakery"},
	"culture":   {"museum", "gallery", "theater", "culture", "history"},
	"history":   {"history", "museum", "monument", "architecture"},
	"art":       {"art", "gallery", "museum"},
	"nature":    {"park", "nature", "mountains", "hiking", "lake"},
	"active":    {"sport", "fitness", "hiking", "bike"},
	"nightlife": {"bar", "club", "nightlife", "live_music"},
	"shopping":  {"shopping", "mall", "market", "souvenirs"},
	"family":    {"family", "kids", "park", "zoo"},
	"relax":     {"spa", "wellness", "park", "tea"},
	"views":     {"viewpoint", "panorama", "mountains"},
}

// KeywordTag maps a keyword found in free-text intent to catalog tags.
type KeywordTag struct {
	Keyword string
	Tags    []string
}

// KeywordTags is ordered so extraction is reproducible. A keyword matches an
// intent word it is a prefix of, so stems like "прогул" cover inflections.
var KeywordTags = []KeywordTag{
	{"кофе", []string{"coffee", "cafe"}},
	{"coffee", []string{"coffee", "cafe"}},
	{"завтрак", []string{"breakfast", "cafe"}},
	{"breakfast", []string{"breakfast", "cafe"}},
	{"обед", []string{"restaurant", "food"}},
	{"ужин", []string{"restaurant", "food"}},
	{"поесть", []string{"restaurant", "food", "cafe"}},
	{"ресторан", []string{"restaurant", "food"}},
	{"lunch", []string{"restaurant", "food"}},
	{"dinner", []string{"restaurant", "food"}},
	{"бар", []string{"bar", "nightlife"}},
	{"выпить", []string{"bar", "nightlife"}},
	{"клуб", []string{"club", "nightlife"}},
	{"музей", []string{"museum", "culture"}},
	{"museum", []string{"museum", "culture"}},
	{"истори", []string{"history", "monument"}},
	{"искусств", []string{"art", "gallery"}},
	{"галере", []string{"gallery", "art"}},
	{"театр", []string{"theater", "culture"}},
	{"парк", []string{"park", "nature"}},
	{"park", []string{"park", "nature"}},
	{"прогул", []string{"park", "walk"}},
	{"горы", []string{"mountains", "hiking"}},
	{"горах", []string{"mountains", "hiking"}},
	{"горн", []string{"mountains", "hiking"}},
	{"поход", []string{"hiking", "nature"}},
	{"природ", []string{"nature", "park"}},
	{"озер", []string{"lake", "nature"}},
	{"панорам", []string{"viewpoint", "panorama"}},
	{"смотров", []string{"viewpoint", "panorama"}},
	{"шопинг", []string{"shopping", "mall"}},
	{"магазин", []string{"shopping"}},
	{"рынок", []string{"market", "local"}},
	{"рынк", []string{"market", "local"}},
	{"базар", []string{"market", "local"}},
	{"сувенир", []string{"souvenirs", "market"}},
	{"дети", []string{"kids", "family"}},
	{"детьми", []string{"kids", "family"}},
	{"ребен", []string{"kids", "family"}},
	{"спорт", []string{"sport", "fitness"}},
	{"спа", []string{"spa", "wellness"}},
	{"отдох", []string{"spa", "wellness", "park"}},
	{"чай", []string{"tea", "cafe"}},
}
