package main

import (
	"context"
	"log"
	"time"

	"github.com/betterjun/cbpro"
	"github.com/betterjun/cbpro/builder"
)

func main() {
	// TODO put your keys here
	accessKey := ""
	secretKey := ""
	passphrase := ""

	rest_api_test(accessKey, secretKey, passphrase)
	feed_test("")
}

func rest_api_test(accessKey, secretKey, passphrase string) {
	apiBuilder := builder.NewAPIBuilder()
	apiBuilder.APIKey(accessKey).APISecretkey(secretKey).APIPassphrase(passphrase)
	//apiBuilder.Sandbox()
	api, err := apiBuilder.BuildREST()
	if err != nil {
		log.Fatalf("构建REST客户端失败:%v", err)
	}

	ctx := context.Background()
	pair := cbpro.NewCurrencyPairFromString("BTC-USD")

	products, err := api.Products(ctx)
	if err != nil {
		log.Println(err)
		return
	}
	log.Println("products", len(products))

	ticker, err := api.Ticker(ctx, pair)
	if err != nil {
		log.Println(err)
		return
	}
	log.Println("ticker", *ticker)

	trades, cursor, err := api.Trades(ctx, pair, 10, cbpro.Cursor{})
	if err != nil {
		log.Println(err)
		return
	}
	log.Println("trades", len(trades), "after cursor", cursor.After)

	// 用after游标翻下一页
	if cursor.After != "" {
		older, _, err := api.Trades(ctx, pair, 10, cbpro.Cursor{After: cursor.After})
		if err != nil {
			log.Println(err)
			return
		}
		log.Println("older trades", len(older))
	}

	if !api.Authenticated() {
		return
	}

	accounts, err := api.Accounts(ctx)
	if err != nil {
		log.Println(err)
		return
	}
	log.Println("accounts", accounts)

	//order, err := api.LimitBuy(ctx, pair, "7000.00", "0.01")
	//if err != nil {
	//	log.Println(err)
	//	return
	//}
	//log.Println("order", order)
	//
	//err = api.CancelOrder(ctx, order.ID)
	//if err != nil {
	//	log.Println(err)
	//	return
	//}
}

func feed_test(proxy string) {
	apiBuilder := builder.NewAPIBuilder().HttpProxy(proxy)

	registry := cbpro.NewChannelRegistry()
	registry.Subscribe(cbpro.CHANNEL_HEARTBEAT, "BTC-USD")
	registry.Subscribe(cbpro.CHANNEL_TICKER, "BTC-USD", "ETH-USD")

	feed := apiBuilder.BuildFeed(registry)
	feed.AddMessageHandler(func(msg map[string]interface{}) {
		log.Println("onMessage", msg["type"], msg["product_id"])
	})
	feed.SetErrorHandler(func(err error) {
		log.Println("onError", err)
	})

	if err := feed.Connect(); err != nil {
		log.Fatalf("连接行情失败:%v", err)
	}

	// 连接建立后追加订阅，只发增量帧
	feed.Subscribe(cbpro.CHANNEL_MATCHES, "BTC-USD")

	time.Sleep(time.Second * 30)

	feed.Unsubscribe(cbpro.CHANNEL_TICKER, "ETH-USD")

	time.Sleep(time.Second * 10)
	feed.Close()
	<-feed.Done()
}
