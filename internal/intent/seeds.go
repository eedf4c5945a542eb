package intent

// DefaultSeeds returns example phrases for every intention, in enumeration order.
func DefaultSeeds() []Seed {
	return []Seed{
		{Celebration, []string{
			"Congratulations on the launch!",
			"We did it, time to celebrate!",
			"Happy birthday, let's party!",
			"Cheers to a great year!",
		}},
		{Encouragement, []string{
			"You've got this, keep going!",
			"Don't give up, you're almost there.",
			"I believe in you.",
			"Stay strong, you can do it.",
		}},
		{Funny, []string{
			"That was hilarious, I can't stop laughing.",
			"lol this is the funniest thing ever",
			"Why did the chicken cross the road? To get to the other side!",
			"haha you cracked me up",
		}},
		{Gratitude, []string{
			"Thank you so much for your help.",
			"I really appreciate everything you do.",
			"Thanks for organising this event.",
			"Grateful for this amazing team.",
		}},
		{Happiness, []string{
			"I'm so happy today!",
			"What a wonderful day.",
			"Feeling joyful and content.",
			"This makes me smile.",
		}},
		{Love, []string{
			"I love you all.",
			"Sending lots of love and hugs.",
			"You mean the world to me.",
			"I adore this community.",
		}},
		{Positivity, []string{
			"Great job everyone.",
			"This is awesome, well done.",
			"Looks good to me.",
			"Nice work, keep it up.",
		}},
		{Question, []string{
			"What time does the talk start?",
			"How does this work?",
			"Where can I find the slides?",
			"Does anyone know the wifi password?",
		}},
		{Sadness, []string{
			"I'm feeling really down today.",
			"This is so sad.",
			"I miss you so much.",
			"Sorry for your loss.",
		}},
	}
}
