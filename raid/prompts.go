package raid

// Speaking prompts rotated per round. The first one is also what a freshly
// created session displays before any raid has been started.
var raidPrompts = []string{
	"Describe a time you had to overcome a significant challenge.",
	"Describe a memorable journey you have taken. (Speak about: Where, When, Who with, Why memorable)",
	"Describe a place in your country you would recommend to visitors.",
	"Describe a skill you learned that turned out to be more useful than expected.",
	"Describe a person who has had a strong influence on you.",
}
