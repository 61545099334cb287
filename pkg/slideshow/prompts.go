package slideshow

// Suffix is appended to every user request. It asks the model to explain
// the topic as a run of short captions, each immediately followed by one
// illustration.
const Suffix = ` Explain it as a story told with a cast of tiny cats as the metaphor.
Keep each sentence short, casual and engaging.
After every sentence, generate one cute, minimal illustration drawn in black ink on a white background.
No commentary before or after, just begin the explanation and keep going until it is complete.`

// Examples are ready-made requests offered to the user.
var Examples = []string{
	"Explain how neural networks learn.",
	"Explain how the tides work.",
	"Explain how a compiler turns code into a program.",
	"Explain how spaghettification works near a black hole.",
}
