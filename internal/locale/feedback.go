package locale

import (
	"fmt"

	"github.com/gentlehabits/internal/progress"
)

type phrase struct {
	english string
	chinese string
}

// in 返回对应语言的文案，缺失时使用另一种语言
func (p phrase) in(language string) string {
	if NormalizeLanguage(language) == LanguageEnglish && p.english != "" {
		return p.english
	}
	if p.chinese != "" {
		return p.chinese
	}
	return p.english
}

// Pick 在中英文之间按请求语言取值，默认中文
func Pick(language, english, chinese string) string {
	return phrase{english: english, chinese: chinese}.in(language)
}

// 文案只描述事实并给出鼓励，不使用任何责备性措辞
var feedbackPhrases = map[progress.Direction]map[progress.Status]phrase{
	progress.DirectionIncrease: {
		progress.StatusEmpty:     {"A fresh start is always available. Even a small step counts.", "随时都可以重新开始，哪怕一小步也算数。"},
		progress.StatusPartial:   {"You showed up today. Every bit moves you forward.", "今天你出现了，每一点都在向前。"},
		progress.StatusCompleted: {"Right on target. Nicely done.", "刚好达成目标，做得好。"},
		progress.StatusExceeded:  {"Beyond today's target. Enjoy the momentum.", "超出了今天的目标，享受这份动力吧。"},
	},
	progress.DirectionDecrease: {
		progress.StatusEmpty:     {"Nothing logged yet. Log whenever you are ready.", "还没有记录，准备好了再记就好。"},
		progress.StatusPartial:   {"A little over today's limit. Tomorrow is a new page.", "今天稍微超出了一点，明天又是新的一页。"},
		progress.StatusCompleted: {"Exactly at today's limit. Steady progress.", "正好在今天的上限内，稳步前进。"},
		progress.StatusExceeded:  {"Well under today's limit. That takes real effort.", "远低于今天的上限，这很不容易。"},
	},
	progress.DirectionMaintain: {
		progress.StatusEmpty:     {"Your routine is waiting for you whenever you are ready.", "你的日常随时等着你回来。"},
		progress.StatusPartial:   {"Part of the routine is still part of the routine.", "完成一部分，也是在坚持。"},
		progress.StatusCompleted: {"Routine kept. Consistency is quietly building.", "保持住了，稳定正在悄悄积累。"},
		progress.StatusExceeded:  {"More than your usual. Nice energy today.", "比平时更多，今天状态不错。"},
	},
}

var pausedPhrase = phrase{"Paused as planned. Rest is part of the journey.", "按计划暂停中，休息也是旅程的一部分。"}

// Feedback 根据方向与状态返回一句鼓励文案
func Feedback(language string, eval progress.Evaluation) string {
	if eval.Paused {
		return pausedPhrase.in(language)
	}
	p, ok := feedbackPhrases[eval.Direction][eval.Status]
	if !ok {
		return ""
	}
	return p.in(language)
}

// GoalReached 最终目标达成时的提示
func GoalReached(language, habitName string) string {
	return Pick(language,
		fmt.Sprintf("Next week %s reaches its final goal.", habitName),
		fmt.Sprintf("下周「%s」就会达到最终目标。", habitName))
}

// WelcomeBack 长时间未记录时的欢迎回来提示
func WelcomeBack(language, habitName string, days int) string {
	return Pick(language,
		fmt.Sprintf("Welcome back to %s. It has been %d days, and picking it up again is what matters.", habitName, days),
		fmt.Sprintf("欢迎回到「%s」。已经 %d 天了，重新开始才是最重要的。", habitName, days))
}
