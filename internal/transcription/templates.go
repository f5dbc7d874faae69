package transcription

// Deterministic speech-engine output, keyed by pet name. Keeps demo and test
// runs reproducible until the real provider integration lands.

var transcriptTemplates = map[string]string{
	"Max":     "Veterinarian: Hello, this is Dr. Smith from PurrScribe Veterinary Clinic. How is Max doing today?\nOwner: Hi doctor, Max has been eating well but I've noticed he's drinking more water than usual.\nVeterinarian: I see. Has there been any change in his urination habits?\nOwner: Yes, he seems to be using the litter box more frequently.\nVeterinarian: We should schedule an appointment to check his blood sugar and kidney function.",
	"Bella":   "Veterinarian: Good morning, I'm calling about Bella's recent vaccination appointment.\nOwner: Yes, how is she doing?\nVeterinarian: She's recovering well. I wanted to remind you that she'll need a follow-up booster in three weeks.\nOwner: Great, I'll make sure to schedule that.",
	"Charlie": "Veterinarian: I'm calling regarding Charlie's skin condition. The lab results from the skin scraping came back.\nOwner: What did they show?\nVeterinarian: We found evidence of Demodex mites. I'd like to start him on a treatment plan with Bravecto and a medicated shampoo.\nOwner: How soon can we begin treatment?\nVeterinarian: You can pick up the prescription today.",
	"Luna":    "Veterinarian: Hello, I'm calling about Luna's recent visit. How is she doing after the medication change?\nOwner: She seems to be doing better. Her appetite has improved.\nVeterinarian: That's great to hear. Has there been any vomiting or diarrhea?\nOwner: No, those symptoms have stopped.\nVeterinarian: Excellent. Let's continue with the current medication for another week.",
	"Oliver":  "Veterinarian: Hi, I'm calling to check on Oliver after his dental cleaning.\nOwner: He's doing well, eating soft food as recommended.\nVeterinarian: Perfect. Has there been any bleeding from the extraction sites?\nOwner: No, everything looks clean.\nVeterinarian: Great. You can start transitioning back to his regular food in a few days.",
	"Buddy":   "Veterinarian: Hello, I'm following up on Buddy's allergy testing results.\nOwner: Yes, I've been waiting for those.\nVeterinarian: We found he's allergic to certain grains and chicken. I'd recommend switching to a specialized diet.\nOwner: Do you have specific brands you recommend?\nVeterinarian: Yes, I'll email you a list of hypoallergenic options that would work well for him.",
}

var summaryTemplates = map[string]string{
	"Max":     "Owner reports increased water consumption and urination. Recommended blood panel to check for diabetes or kidney issues. Follow-up appointment scheduled in 2 weeks.",
	"Bella":   "Reminder call about upcoming booster vaccination in three weeks. Pet is recovering well from initial vaccination.",
	"Charlie": "Lab results showed Demodex mites. Treatment plan includes Bravecto and medicated shampoo. Owner will pick up prescription today.",
	"Luna":    "Pet is responding well to medication change. Appetite has improved and digestive symptoms have resolved. Continue current medication for one more week.",
	"Oliver":  "Post-dental cleaning follow-up. Pet is eating soft food with no complications. No bleeding from extraction sites. Can transition back to regular food in a few days.",
	"Buddy":   "Allergy testing results show sensitivity to grains and chicken. Recommended switching to specialized hypoallergenic diet. Veterinarian will email list of suitable food options.",
}

const (
	genericTranscript = "Veterinarian: Hello, this is Dr. Smith from PurrScribe Veterinary Clinic. I'm calling about your pet's recent visit.\nOwner: Yes, how are they doing?\nVeterinarian: They're doing well. I just wanted to follow up on the treatment plan we discussed.\nOwner: Thank you for checking in.\nVeterinarian: Please let us know if you notice any changes in their condition."
	genericSummary    = "Call discussed pet's health status and treatment options. Follow-up appointment recommended."
)

// TranscriptFor returns the transcript for a pet, falling back to the
// generic template.
func TranscriptFor(petName string) string {
	if t, ok := transcriptTemplates[petName]; ok {
		return t
	}
	return genericTranscript
}

// SummaryFor returns the summary for a pet, falling back to the generic
// template.
func SummaryFor(petName string) string {
	if s, ok := summaryTemplates[petName]; ok {
		return s
	}
	return genericSummary
}
