// Package slug builds URL path segments from human text such as book titles.
//
//	slug.Make("Game of Thrones")            // "game-of-thrones"
//	slug.Make("Les Misérables")             // "les-miserables"
//	slug.Make("War & Peace", slug.Replace(map[string]string{"&": "and"})) // "war-and-peace"
package slug
