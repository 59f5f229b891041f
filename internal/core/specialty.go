package core

import "regexp"

// Specialty tags.  Stores match them case-insensitively against
// Specialist.Specialty.
const (
	SpecialtyCardiology       = "Tim mạch"
	SpecialtyNeurology        = "Thần kinh"
	SpecialtyGastroenterology = "Tiêu hóa"
	SpecialtyRespiratory      = "Hô hấp"
	SpecialtyENT              = "Tai mũi họng"
	SpecialtyDermatology      = "Da liễu"
	SpecialtyMusculoskeletal  = "Cơ xương khớp"
	SpecialtyOphthalmology    = "Mắt"
	SpecialtyPediatrics       = "Nhi khoa"
	SpecialtyObstetrics       = "Sản phụ khoa"
	SpecialtyDentistry        = "Răng hàm mặt"
	SpecialtyPsychiatry       = "Tâm thần"
	SpecialtyEndocrinology    = "Nội tiết"
	SpecialtyUrology          = "Tiết niệu"
	SpecialtyGeneral          = "Đa khoa"
)

type specialtyRule struct {
	specialty string
	pattern   *regexp.Regexp
}

func rule(specialty, keywords string) specialtyRule {
	return specialtyRule{specialty: specialty, pattern: regexp.MustCompile(`\b(` + keywords + `)\b`)}
}

// specialtyRules are evaluated in order and the first match wins.  Several
// symptoms appear under more than one specialty, so the order is part of
// the contract.
var specialtyRules = []specialtyRule{
	rule(SpecialtyCardiology, `tim mach|dau nguc|tuc nguc|hoi hop|danh trong nguc|nhip tim|huyet ap|dau tim|benh tim|heart|chest pain`),
	rule(SpecialtyNeurology, `than kinh|dau dau|chong mat|hoa mat|te bi|te tay|co giat|dong kinh|mat ngu|dot quy|dau nua dau|headache|dizzy|dizziness|migraine`),
	rule(SpecialtyGastroenterology, `tieu hoa|dau bung|da day|buon non|non mua|tieu chay|tao bon|o chua|day hoi|viem gan|benh tri|stomach`),
	rule(SpecialtyRespiratory, `ho hap|ho khan|ho co dam|ho keo dai|ho ra mau|kho tho|kho khe|viem phoi|hen suyen|lao phoi|cough`),
	rule(SpecialtyENT, `tai mui hong|dau hong|viem hong|nghet mui|so mui|chay mui|u tai|dau tai|viem xoang|amidan|sore throat`),
	rule(SpecialtyDermatology, `da lieu|noi man|ngua|mun|phat ban|di ung da|nam da|vay nen|rash|acne`),
	rule(SpecialtyMusculoskeletal, `co xuong khop|dau lung|dau khop|dau vai|dau goi|dau co|thoai hoa|gut|loang xuong|bong gan|gay xuong|back pain`),
	rule(SpecialtyOphthalmology, `nhan khoa|dau mat|mo mat|nhin mo|do mat|kho mat|can thi|vien thi|blurred vision`),
	rule(SpecialtyPediatrics, `nhi khoa|tre em|em be|be bi|tre so sinh|chau be`),
	rule(SpecialtyObstetrics, `san phu khoa|phu khoa|mang thai|co thai|thai ky|kinh nguyet|tre kinh|pregnant|pregnancy`),
	rule(SpecialtyDentistry, `rang ham mat|dau rang|sau rang|nho rang|chay mau chan rang|nieng rang|toothache`),
	rule(SpecialtyPsychiatry, `tam than|tram cam|lo au|cang thang|hoang loan|stress|anxiety|depression`),
	rule(SpecialtyEndocrinology, `noi tiet|tieu duong|duong huyet|tuyen giap|buou co|diabetes|thyroid`),
	rule(SpecialtyUrology, `tiet nieu|tieu buot|tieu rat|tieu ra mau|soi than|suy than|benh than`),
}

// MatchSpecialty maps symptom text to a specialty tag.  It is total: text
// that matches no rule, including empty text, yields SpecialtyGeneral.
func MatchSpecialty(text string) string {
	n := Normalize(text)
	if n == "" {
		return SpecialtyGeneral
	}
	for _, r := range specialtyRules {
		if r.pattern.MatchString(n) {
			return r.specialty
		}
	}
	return SpecialtyGeneral
}

// Specialties lists every tag in rule order followed by the default.
func Specialties() []string {
	out := make([]string, 0, len(specialtyRules)+1)
	for _, r := range specialtyRules {
		out = append(out, r.specialty)
	}
	return append(out, SpecialtyGeneral)
}
