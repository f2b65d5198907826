package translate

import "strings"

type Language string

const (
	Myanmar Language = "my"
	English Language = "en"
)

func ParseLanguage(s string) Language {
	if Language(strings.ToLower(strings.TrimSpace(s))) == English {
		return English
	}
	return Myanmar
}

type MessageKey int

const (
	MsgReady MessageKey = iota
	MsgPreparing
	MsgAnalyzing
	MsgAnalyzingRemote
	MsgFinalizing
	MsgRefining
	MsgGenerating
	MsgCompleted
	MsgNoSpeech
	MsgFileTooLarge
	MsgPayloadTooLarge
	MsgTranslationFailed
)

var messages = map[Language]map[MessageKey]string{
	Myanmar: {
		MsgReady:             "အဆင်သင့်ဖြစ်ပါပြီ",
		MsgPreparing:         "ဗီဒီယိုဖိုင်ကို ပြင်ဆင်နေပါသည်...",
		MsgAnalyzing:         "AI မှ စတင်စစ်ဆေးနေပါသည် (50MB အထိ လက်ခံထားပါသည်)...",
		MsgAnalyzingRemote:   "Gemini AI is analyzing the video content (Large File)...",
		MsgFinalizing:        "Finalizing translations...",
		MsgRefining:          "စာတန်းထိုးများကို ပိုမိုသဘာဝကျအောင် ပြင်ဆင်နေပါသည်...",
		MsgGenerating:        "စာတန်းထိုးဖိုင် ထုတ်လုပ်နေပါသည်...",
		MsgCompleted:         "ဘာသာပြန်ခြင်း အောင်မြင်ပါသည်။",
		MsgNoSpeech:          "စကားပြောများကို ရှာမတွေ့ပါ။ ဗီဒီယိုတွင် တရုတ်စကားပြော ပါဝင်ကြောင်း သေချာပါစေ။",
		MsgFileTooLarge:      "ဗီဒီယိုဖိုင် အရွယ်အစား 50MB ထက် ကျော်လွန်နေပါသည်။ ပိုမိုသေးငယ်သော ဖိုင်ကို အသုံးပြုပေးပါ။",
		MsgPayloadTooLarge:   "ဗီဒီယိုဖိုင် အရွယ်အစား ကြီးမားလွန်းသဖြင့် AI မှ လက်မခံနိုင်ပါ။ ကျေးဇူးပြု၍ ဗီဒီယိုကို compress လုပ်ပြီး ပြန်တင်ပေးပါ။",
		MsgTranslationFailed: "AI ဘာသာပြန်ခြင်းတွင် အမှားအယွင်းရှိနေပါသည်။ ကျေးဇူးပြု၍ ပြန်လည်ကြိုးစားကြည့်ပါ။",
	},
	English: {
		MsgReady:             "Ready",
		MsgPreparing:         "Preparing the video file...",
		MsgAnalyzing:         "AI analysis starting (files up to 50MB accepted)...",
		MsgAnalyzingRemote:   "Gemini AI is analyzing the video content (Large File)...",
		MsgFinalizing:        "Finalizing translations...",
		MsgRefining:          "Polishing the subtitle wording...",
		MsgGenerating:        "Generating the subtitle file...",
		MsgCompleted:         "Translation completed.",
		MsgNoSpeech:          "No dialogue found. Make sure the video contains Chinese speech.",
		MsgFileTooLarge:      "The video is larger than 50MB. Please use a smaller file.",
		MsgPayloadTooLarge:   "The video is too large for the AI service. Please compress it and upload again.",
		MsgTranslationFailed: "Something went wrong during AI translation. Please try again.",
	},
}

func Message(lang Language, key MessageKey) string {
	if table, ok := messages[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	return messages[Myanmar][key]
}
