package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchSpecialty(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"tôi bị đau đầu và chóng mặt", SpecialtyNeurology},
		{"tôi muốn gặp bác sĩ tim mạch", SpecialtyCardiology},
		{"Tức ngực, hồi hộp khi leo cầu thang", SpecialtyCardiology},
		{"đau bụng và buồn nôn từ tối qua", SpecialtyGastroenterology},
		{"ho khan kéo dài, khó thở về đêm", SpecialtyRespiratory},
		{"bị nổi mẩn ngứa khắp người", SpecialtyDermatology},
		{"đau lưng khi ngồi lâu", SpecialtyMusculoskeletal},
		{"mắt nhìn mờ và khô mắt", SpecialtyOphthalmology},
		{"đau răng hàm dưới", SpecialtyDentistry},
		{"lo âu, mất tập trung", SpecialtyPsychiatry},
		{"tiểu buốt mấy hôm nay", SpecialtyUrology},
		{"tôi đang mang thai tháng thứ ba", SpecialtyObstetrics},
		{"tôi thấy hơi mệt", SpecialtyGeneral},
		{"", SpecialtyGeneral},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MatchSpecialty(tc.text), tc.text)
	}
}

func TestMatchSpecialty_RuleOrderBreaksTies(t *testing.T) {
	// cardiology precedes neurology
	assert.Equal(t, SpecialtyCardiology, MatchSpecialty("đau đầu kèm đau ngực"))
	// neurology precedes gastroenterology
	assert.Equal(t, SpecialtyNeurology, MatchSpecialty("đau bụng và chóng mặt"))
}

func TestMatchSpecialty_Deterministic(t *testing.T) {
	text := "tôi bị đau đầu và chóng mặt"
	first := MatchSpecialty(text)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, MatchSpecialty(text))
	}
}

func TestMatchSpecialty_IgnoresSubstringCollisions(t *testing.T) {
	// "tìm" folds to "tim" and must not read as cardiology
	assert.Equal(t, SpecialtyGeneral, MatchSpecialty("tôi đang tìm thông tin"))
	// "chóng mặt" must not read as ophthalmology
	assert.Equal(t, SpecialtyNeurology, MatchSpecialty("chóng mặt"))
}

func TestSpecialtiesEndWithDefault(t *testing.T) {
	all := Specialties()
	assert.Equal(t, SpecialtyGeneral, all[len(all)-1])
	assert.Equal(t, SpecialtyCardiology, all[0])
}
