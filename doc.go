// Package transcache provides a caching translation service.
//
// Transcache routes translation requests to pluggable upstream providers
// (MyMemory, DeepL, a Hugging Face model, OpenAI) and caches the results in
// a shared backing store. Cache lifetime follows how popular a translation
// is: the more often a text is requested, the longer its entry lives.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/transcache"
//	    "github.com/ZaguanLabs/transcache/cache"
//	    "github.com/ZaguanLabs/transcache/provider"
//	)
//
//	func main() {
//	    // Register providers
//	    router := transcache.NewRouter(
//	        provider.NewMyMemory(provider.MyMemoryConfig{}),
//	    )
//
//	    // Create service with a cache store
//	    store := cache.NewStore(cache.NewMemoryBackend())
//	    svc := transcache.NewService(router, transcache.WithCache(store))
//
//	    res, err := svc.Translate(context.Background(), transcache.Request{
//	        Text:       "hello",
//	        SourceLang: "en",
//	        TargetLang: "zh",
//	        Provider:   "mymemory",
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.TranslatedText, res.Cached)
//	}
package transcache
