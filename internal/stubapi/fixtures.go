package stubapi

import "time"

func seedUsers() []userRecord {
	return []userRecord{
		{ID: 1, Username: "john.doe@mail.com", Email: "john.doe@mail.com", Password: "JohnDoe123"},
		{ID: 2, Username: "jane.smith@mail.com", Email: "jane.smith@mail.com", Password: "JaneSmith123"},
	}
}

func seedBooks() []bookRecord {
	day := func(n int) time.Time {
		return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	}
	return []bookRecord{
		{ID: 1, Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Genre: "sci_fi", BookType: "novel", PublishedYear: 1969, Description: "An envoy to a planet of ambisexual humans navigates politics and ice.", CreatedAt: day(0)},
		{ID: 2, Title: "A Wizard of Earthsea", Author: "Ursula K. Le Guin", Genre: "fantasy", BookType: "novel", PublishedYear: 1968, Description: "A young mage's pride looses a shadow he must learn to name.", CreatedAt: day(1)},
		{ID: 3, Title: "Dune", Author: "Frank Herbert", Genre: "sci_fi", BookType: "novel", PublishedYear: 1965, Description: "A ducal heir survives betrayal on a desert planet that supplies the spice.", CreatedAt: day(2)},
		{ID: 4, Title: "The Fifth Season", Author: "N. K. Jemisin", Genre: "fantasy", BookType: "novel", PublishedYear: 2015, Description: "A world that ends over and over, told by the people who break it.", CreatedAt: day(3)},
		{ID: 5, Title: "Stories of Your Life and Others", Author: "Ted Chiang", Genre: "sci_fi", BookType: "short_stories", PublishedYear: 2002, Description: "Eight stories about language, free will, and the shape of time.", CreatedAt: day(4)},
		{ID: 6, Title: "The Remains of the Day", Author: "Kazuo Ishiguro", Genre: "fiction", BookType: "novel", PublishedYear: 1989, Description: "An English butler drives west and reckons with a life of service.", CreatedAt: day(5)},
		{ID: 7, Title: "Beloved", Author: "Toni Morrison", Genre: "fiction", BookType: "novel", PublishedYear: 1987, Description: "A freed woman is haunted by the daughter she could not keep.", CreatedAt: day(6)},
		{ID: 8, Title: "Interpreter of Maladies", Author: "Jhumpa Lahiri", Genre: "fiction", BookType: "short_stories", PublishedYear: 1999, Description: "Nine stories of Indian and Indian-American lives in transit.", CreatedAt: day(7)},
		{ID: 9, Title: "Ariel", Author: "Sylvia Plath", Genre: "fiction", BookType: "poetry", PublishedYear: 1965, Description: "The posthumous collection that fixed Plath's reputation.", CreatedAt: day(8)},
		{ID: 10, Title: "The Autobiography of Malcolm X", Author: "Malcolm X", Genre: "biography", BookType: "non_fiction", PublishedYear: 1965, Description: "As told to Alex Haley; a life remade twice over.", CreatedAt: day(9)},
		{ID: 11, Title: "Wild Swans", Author: "Jung Chang", Genre: "biography", BookType: "non_fiction", PublishedYear: 1991, Description: "Three generations of women across a century of Chinese history.", CreatedAt: day(10)},
		{ID: 12, Title: "Atomic Habits", Author: "James Clear", Genre: "self_help", BookType: "non_fiction", PublishedYear: 2018, Description: "Small compounding changes as the unit of self-improvement.", CreatedAt: day(11)},
		{ID: 13, Title: "Meditations", Author: "Marcus Aurelius", Genre: "self_help", BookType: "non_fiction", PublishedYear: 180, Description: "Private notes of a Stoic emperor, never meant for readers.", CreatedAt: day(12)},
		{ID: 14, Title: "The Dispossessed", Author: "Ursula K. Le Guin", Genre: "sci_fi", BookType: "novel", PublishedYear: 1974, Description: "A physicist moves between an anarchist moon and its propertied planet.", CreatedAt: day(13)},
	}
}
