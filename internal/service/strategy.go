package service

import (
	"fmt"
	"math/rand"
	"strings"

	"undercover_web/internal/models"
)

// fallbackSpeeches 是 LLM 不可用時的保底發言
var fallbackSpeeches = []string{
	"這個詞讓我想到了很多有趣的事情。",
	"我覺得這個東西在生活中很常見。",
	"嗯，我的詞不太好描述，大家應該都懂。",
	"這個詞給我的感覺還蠻特別的。",
}

// FallbackSpeech 隨機取一句保底發言
func FallbackSpeech() string {
	return fallbackSpeeches[rand.Intn(len(fallbackSpeeches))]
}

// FallbackVote 從候選人中隨機挑一位
func FallbackVote(candidates []models.GamePlayer) string {
	if len(candidates) == 0 {
		return ""
	}
	return candidates[rand.Intn(len(candidates))].ID
}

// speechSystemPrompt 依身份、難度與性格組出發言的系統提示
func speechSystemPrompt(ai *models.AIPlayer, role models.PlayerRole) string {
	var sb strings.Builder
	sb.WriteString("你正在玩「誰是臥底」遊戲。每位玩家會拿到一個詞語，")
	sb.WriteString("大多數人拿到相同的平民詞，少數臥底拿到相近但不同的詞。")
	sb.WriteString("每輪輪流用一句話描述自己的詞，不能直接說出詞語本身。\n")

	if role == models.RoleUndercover {
		sb.WriteString("你是臥底。你要隱藏身份，描述時要模糊到可能同時符合兩個詞，避免暴露差異。\n")
	} else {
		sb.WriteString("你是平民。你要讓其他平民相信你拿到的是正確的詞，同時不要描述得太具體讓臥底猜到。\n")
	}

	switch ai.Difficulty {
	case models.AIDifficultyBeginner:
		sb.WriteString("你的描述可以直白一些，偶爾露出破綻也沒關係。\n")
	case models.AIDifficultyExpert:
		sb.WriteString("你的描述要非常謹慎，善用一語雙關，並根據別人的發言調整策略。\n")
	default:
		sb.WriteString("你的描述要有一定策略，不要太直白也不要太隱晦。\n")
	}

	switch ai.Personality {
	case models.AIPersonalityCautious:
		sb.WriteString("你的性格謹慎，發言保守、措辭留有餘地。")
	case models.AIPersonalityAggressive:
		sb.WriteString("你的性格激進，發言大膽，敢於質疑其他玩家。")
	case models.AIPersonalityRandom:
		sb.WriteString("你的性格難以捉摸，發言風格每次都不太一樣。")
	default:
		sb.WriteString("你的性格平和，發言自然。")
	}
	sb.WriteString("\n只輸出一句發言內容，不要加任何解釋或前綴。發言不超過 50 個字。")
	return sb.String()
}

// BuildSpeechPrompt 組出請 LLM 產生發言的對話
func BuildSpeechPrompt(ai *models.AIPlayer, word string, role models.PlayerRole, round int, previous []string) []ChatMessage {
	var sb strings.Builder
	fmt.Fprintf(&sb, "你的詞語是「%s」。現在是第 %d 輪。\n", word, round)
	if len(previous) > 0 {
		sb.WriteString("本輪到目前為止的發言：\n")
		for _, line := range previous {
			sb.WriteString("- ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("輪到你發言了，請描述你的詞語。")

	return []ChatMessage{
		{Role: "system", Content: speechSystemPrompt(ai, role)},
		{Role: "user", Content: sb.String()},
	}
}

// VoteCandidate 是投票提示中的一位候選人
type VoteCandidate struct {
	Player   models.GamePlayer
	Speeches []string
}

// BuildVotePrompt 組出請 LLM 選出投票目標的對話
func BuildVotePrompt(ai *models.AIPlayer, word string, role models.PlayerRole, round int, candidates []VoteCandidate) []ChatMessage {
	var sb strings.Builder
	sb.WriteString("你正在玩「誰是臥底」遊戲，現在是投票階段。")
	if role == models.RoleUndercover {
		sb.WriteString("你是臥底，要投給最可能被懷疑是臥底的平民，轉移大家的注意力。")
	} else {
		sb.WriteString("你是平民，要根據發言找出描述最可疑、最可能是臥底的玩家。")
	}
	if ai.Difficulty == models.AIDifficultyExpert {
		sb.WriteString("仔細比對每個人的用詞與你的詞語之間的差異。")
	}
	sb.WriteString("\n只輸出你要投的玩家名字，不要任何其他文字。")

	var ub strings.Builder
	fmt.Fprintf(&ub, "你的詞語是「%s」。現在是第 %d 輪投票。可投的玩家：\n", word, round)
	for i := range candidates {
		fmt.Fprintf(&ub, "玩家「%s」的發言：\n", candidates[i].Player.Username)
		if len(candidates[i].Speeches) == 0 {
			ub.WriteString("（尚未發言）\n")
		}
		for _, line := range candidates[i].Speeches {
			ub.WriteString("- ")
			ub.WriteString(line)
			ub.WriteString("\n")
		}
	}
	ub.WriteString("你要投給誰？")

	return []ChatMessage{
		{Role: "system", Content: sb.String()},
		{Role: "user", Content: ub.String()},
	}
}

// ParseVoteChoice 從模型輸出中找出被提到的候選人，找不到時回傳空字串
func ParseVoteChoice(content string, candidates []VoteCandidate) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}

	// 完整名字優先
	for i := range candidates {
		if strings.EqualFold(content, candidates[i].Player.Username) {
			return candidates[i].Player.ID
		}
	}
	// 其次找輸出中包含的名字，取最長的那個避免前綴誤判
	bestLen := 0
	bestID := ""
	for i := range candidates {
		name := candidates[i].Player.Username
		if strings.Contains(content, name) && len(name) > bestLen {
			bestLen = len(name)
			bestID = candidates[i].Player.ID
		}
	}
	return bestID
}
