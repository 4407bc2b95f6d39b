package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"undercover_web/internal/models"
)

func TestBuildSpeechPrompt(t *testing.T) {
	ai := &models.AIPlayer{
		Name:        "阿偉",
		Difficulty:  models.AIDifficultyExpert,
		Personality: models.AIPersonalityCautious,
	}

	messages := BuildSpeechPrompt(ai, "珍珠奶茶", models.RoleUndercover, 2, []string{"小明：我的詞可以喝"})
	require.Len(t, messages, 2)

	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "臥底")
	assert.Contains(t, messages[0].Content, "謹慎")

	assert.Equal(t, "user", messages[1].Role)
	assert.Contains(t, messages[1].Content, "珍珠奶茶")
	assert.Contains(t, messages[1].Content, "第 2 輪")
	assert.Contains(t, messages[1].Content, "小明：我的詞可以喝")
}

func TestBuildVotePrompt(t *testing.T) {
	ai := &models.AIPlayer{Name: "阿偉", Difficulty: models.AIDifficultyNormal}
	candidates := []VoteCandidate{
		{Player: models.GamePlayer{ID: "a", Username: "小明"}, Speeches: []string{"可以吃的"}},
		{Player: models.GamePlayer{ID: "b", Username: "小華"}},
	}

	messages := BuildVotePrompt(ai, "蘋果", models.RoleCivilian, 1, candidates)
	require.Len(t, messages, 2)

	assert.Contains(t, messages[0].Content, "平民")
	assert.Contains(t, messages[1].Content, "小明")
	assert.Contains(t, messages[1].Content, "可以吃的")
	// 沒發言的候選人也要列出
	assert.Contains(t, messages[1].Content, "小華")
}

func TestParseVoteChoice(t *testing.T) {
	candidates := []VoteCandidate{
		{Player: models.GamePlayer{ID: "a", Username: "小明"}},
		{Player: models.GamePlayer{ID: "b", Username: "小明友"}},
		{Player: models.GamePlayer{ID: "c", Username: "阿華"}},
	}

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"完整名字", "阿華", "c"},
		{"名字夾在句子裡", "我覺得應該投給阿華。", "c"},
		{"取最長匹配避免前綴誤判", "我投小明友", "b"},
		{"找不到名字", "我不知道要投誰", ""},
		{"空白輸出", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseVoteChoice(tt.content, candidates))
		})
	}
}

func TestFallbacks(t *testing.T) {
	assert.NotEmpty(t, FallbackSpeech())

	players := []models.GamePlayer{{ID: "a"}, {ID: "b"}}
	got := FallbackVote(players)
	assert.Contains(t, []string{"a", "b"}, got)

	assert.Empty(t, FallbackVote(nil))
}
