package lexicon

// DefaultRegions lists wine regions in match priority order.
var DefaultRegions = []string{
	"napa valley",
	"sonoma",
	"paso robles",
	"willamette valley",
	"bordeaux",
	"burgundy",
	"champagne",
	"rhone",
	"loire",
	"alsace",
	"provence",
	"tuscany",
	"piedmont",
	"veneto",
	"sicily",
	"rioja",
	"ribera del duero",
	"priorat",
	"douro",
	"mosel",
	"barossa valley",
	"mclaren vale",
	"margaret river",
	"marlborough",
	"central otago",
	"mendoza",
	"maipo valley",
	"stellenbosch",
}

// DefaultGrapeVarieties lists grape varieties in match priority order.
var DefaultGrapeVarieties = []string{
	"cabernet sauvignon",
	"sauvignon blanc",
	"pinot noir",
	"pinot grigio",
	"pinot gris",
	"chardonnay",
	"merlot",
	"syrah",
	"shiraz",
	"zinfandel",
	"malbec",
	"tempranillo",
	"sangiovese",
	"nebbiolo",
	"grenache",
	"riesling",
	"gewurztraminer",
	"chenin blanc",
	"viognier",
	"cabernet franc",
	"moscato",
}

// DefaultStoplist holds words printed on most labels that never name a
// winery or a wine.
var DefaultStoplist = []string{
	"wine",
	"vintage",
	"reserve",
	"estate",
	"cellars",
	"winery",
	"valley",
	"red",
	"white",
	"dry",
	"sweet",
}

// DefaultCorrections maps common speech-to-text misses to wine terms.
var DefaultCorrections = []Correction{
	{Pattern: "cab sav", Replacement: "Cabernet Sauvignon"},
	{Pattern: "cab sauv", Replacement: "Cabernet Sauvignon"},
	{Pattern: "cabernet savignon", Replacement: "Cabernet Sauvignon"},
	{Pattern: "sav blanc", Replacement: "Sauvignon Blanc"},
	{Pattern: "savignon blanc", Replacement: "Sauvignon Blanc"},
	{Pattern: "pino noir", Replacement: "Pinot Noir"},
	{Pattern: "peano noir", Replacement: "Pinot Noir"},
	{Pattern: "pino grigio", Replacement: "Pinot Grigio"},
	{Pattern: "shardonay", Replacement: "Chardonnay"},
	{Pattern: "chardonay", Replacement: "Chardonnay"},
	{Pattern: "merlo", Replacement: "Merlot"},
	{Pattern: "reesling", Replacement: "Riesling"},
	{Pattern: "rissling", Replacement: "Riesling"},
	{Pattern: "tempranilo", Replacement: "Tempranillo"},
	{Pattern: "sangiovesi", Replacement: "Sangiovese"},
	{Pattern: "nebiolo", Replacement: "Nebbiolo"},
	{Pattern: "malbeck", Replacement: "Malbec"},
	{Pattern: "bordo", Replacement: "Bordeaux"},
	{Pattern: "rioha", Replacement: "Rioja"},
	{Pattern: "tanins", Replacement: "tannins"},
	{Pattern: "tannin's", Replacement: "tannins"},
}
