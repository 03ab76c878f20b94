package workflow

import (
	"fmt"
	"strings"
)

const promptTemplate = `Based on the candlestick chart, considering potential trends, support/resistance levels, and common fractal patterns provide a trading signal.
Only list the position type (Long, Short, None), stoploss, takeprofit as below:
Position Side:
Current Price:
StopLoss:
StopLoss (Percentage):
TakeProfit:
TakeProfit (Percentage):
Do not add anything more than this structure; only add up to 100 words description about why the signal was generated (After 2 empty lines)!
Use accurate values not rounded
Also, firstly consider %s with higher priority (if is not meaningless).`

// ComposePrompt embeds the user's free text into the fixed analysis instructions.
func ComposePrompt(userPrompt string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(userPrompt))
}
