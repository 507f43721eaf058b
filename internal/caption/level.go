package caption

// Level is the band of a 0-100 score such as RSI or the fear and greed index.
type Level int

const (
	Low Level = iota
	Neutral
	High
)

// Band edges; both are exclusive so 30 and 70 stay neutral.
const (
	LowerBound = 30.0
	UpperBound = 70.0
)

// Classify places score in its band.
func Classify(score float64) Level {
	switch {
	case score < LowerBound:
		return Low
	case score > UpperBound:
		return High
	default:
		return Neutral
	}
}

// RSI names the level in momentum terms.
func (l Level) RSI() string {
	switch l {
	case Low:
		return "Oversold"
	case High:
		return "Overbought"
	}
	return "Neutral"
}

// Sentiment names the level in fear and greed terms.
func (l Level) Sentiment() string {
	switch l {
	case Low:
		return "Fear"
	case High:
		return "Greed"
	}
	return "Neutral"
}

func (l Level) String() string {
	switch l {
	case Low:
		return "low"
	case High:
		return "high"
	}
	return "neutral"
}
